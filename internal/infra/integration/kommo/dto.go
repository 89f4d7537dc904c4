package kommo

// HandOffInput é o lead capturado que vai para o CRM.
type HandOffInput struct {
	LeadID      string
	Campaign    string
	AdSet       string
	IsHot       bool
	StoreName   string
	BrokerName  string
	BrokerEmail string

	// extraídos do payload opaco, quando existirem
	ContactName string
	Phone       string
	Email       string
}

type contactsResponse struct {
	Embedded struct {
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
	} `json:"_embedded"`
}

type leadsResponse struct {
	Embedded struct {
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}
