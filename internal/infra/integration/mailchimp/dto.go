package mailchimp

type memberRequest struct {
	EmailAddress string         `json:"email_address"`
	StatusIfNew  string         `json:"status_if_new"`
	MergeFields  map[string]any `json:"merge_fields"`
}

type memberTag struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type tagsRequest struct {
	Tags []memberTag `json:"tags"`
}

type apiError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}
