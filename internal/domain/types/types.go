// Package types contains the response shapes shared by the service and the HTTP layer.
package types

// Condition names a screening model; it is also the last path segment of its endpoint.
type Condition string

// Supported conditions.
const (
	Diabetes Condition = "diabetes"
	Lung     Condition = "lung"
	Covid    Condition = "covid"
	Sleep    Condition = "sleep"
)

// Conditions lists every supported condition in endpoint order.
var Conditions = []Condition{Diabetes, Lung, Covid, Sleep}

// Result is the advisory produced for one prediction.
type Result struct {
	Label       string  `json:"label"`
	RiskLevel   string  `json:"riskLevel"`
	Probability float64 `json:"probability"`
	Title       string  `json:"title"`
	Message     string  `json:"message"`
}

// Response is the success envelope of every prediction endpoint.
type Response struct {
	Condition Condition `json:"condition"`
	Result    Result    `json:"result"`
}
