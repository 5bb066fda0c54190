package catalog

import _ "embed"

// Вшитая копия config/catalog.json; используется, когда путь к конфигу не задан.
//
//go:embed catalog.json
var defaultCatalog []byte
