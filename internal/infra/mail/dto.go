package mail

type EnterpriseAlertData struct {
	Name     string
	Email    string
	Company  string
	JobTitle string
	Score    int
	LeadURL  string
}
