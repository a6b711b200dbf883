package bitespeed

// IdentifyRequest is the payload for the identify endpoint. Both fields are
// optional on the wire; absent fields are omitted from the JSON body. The
// "at least one field present" rule is a caller concern and is deliberately
// not enforced here.
type IdentifyRequest struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Contact is the consolidated contact record returned by the service.
// Secondary contact IDs are strings on the wire even though the primary ID
// is numeric; this mirrors the server contract.
type Contact struct {
	PrimaryContactID    int64    `json:"primaryContactId"`
	Emails              []string `json:"emails"`
	PhoneNumbers        []string `json:"phoneNumbers"`
	SecondaryContactIDs []string `json:"secondaryContactIds"`
}

// ContactResponse wraps the contact record under the "contact" key.
type ContactResponse struct {
	Contact Contact `json:"contact"`
}
