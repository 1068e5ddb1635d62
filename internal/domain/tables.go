package domain

var Tables = []interface{}{
	// Catalog
	&Provider{},
	&Category{},
	&Service{},
	// Requests
	&ServiceRequest{},
	&RequestEvent{},
}
