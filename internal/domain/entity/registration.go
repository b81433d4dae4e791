package entity

// Registration is the input of a registration attempt. Exactly one of
// Username/Password/SchoolName or QRData is expected.
type Registration struct {
	SlackUserID string `validate:"required"`
	Username    string `validate:"required_without=QRData,excluded_with=QRData"`
	Password    string `validate:"required_with=Username"`
	SchoolName  string `validate:"required_with=Username"`
	QRData      string `validate:"required_without=Username"`
}
