package toolkit

import "sync"

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog of every tool.
func Default() *Catalog {
	defaultOnce.Do(func() {
		var tools []*Tool
		for _, group := range [][]*Tool{
			stringTools(),
			encodingTools(),
			securityTools(),
			identifierTools(),
			randomTools(),
			dataTools(),
			xmlTools(),
			datetimeTools(),
			conversionTools(),
		} {
			tools = append(tools, group...)
		}

		c, err := NewCatalog(tools...)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
