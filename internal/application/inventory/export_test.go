package inventory

// WithItemNames expone withItemNames a los tests del paquete inventory_test.
var WithItemNames = withItemNames
