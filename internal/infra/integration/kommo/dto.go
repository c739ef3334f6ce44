package kommo

type tag struct {
	Name string `json:"name"`
}

type fieldValue struct {
	Value    string `json:"value"`
	EnumCode string `json:"enum_code,omitempty"`
}

type customField struct {
	FieldCode string       `json:"field_code"`
	Values    []fieldValue `json:"values"`
}

type contactRequest struct {
	Name         string        `json:"name"`
	FirstName    string        `json:"first_name,omitempty"`
	LastName     string        `json:"last_name,omitempty"`
	CustomFields []customField `json:"custom_fields_values"`
}

type contactRef struct {
	ID int `json:"id"`
}

type leadEmbedded struct {
	Tags     []tag        `json:"tags"`
	Contacts []contactRef `json:"contacts"`
}

type leadRequest struct {
	Name     string       `json:"name"`
	StatusID int          `json:"status_id,omitempty"`
	Price    int          `json:"price"`
	Embedded leadEmbedded `json:"_embedded"`
}

type embeddedIDs struct {
	Embedded struct {
		Contacts []contactRef `json:"contacts"`
		Leads    []contactRef `json:"leads"`
	} `json:"_embedded"`
}
