package paysheet

// ResultView is the JSON shape of an InitResult for transport to a host application
type ResultView struct {
	Status string        `json:"status"`
	Data   *InitDataView `json:"data,omitempty"`
	Error  *ErrorView    `json:"error,omitempty"`
}

// InitDataView is the JSON shape of InitData
type InitDataView struct {
	Config         *Configuration      `json:"config"`
	PaymentIntent  PaymentIntent       `json:"paymentIntent"`
	AllowedTypes   []PaymentMethodType `json:"allowedTypes"`
	PaymentMethods []PaymentMethod     `json:"paymentMethods"`
	SavedSelection *SelectionView      `json:"savedSelection"`
}

// SelectionView is the JSON shape of a SavedSelection; nil encodes SelectionNone
type SelectionView struct {
	Type            string `json:"type"`
	PaymentMethodID string `json:"paymentMethodId,omitempty"`
}

// ErrorView is the JSON shape of a failure reason
type ErrorView struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

const (
	ViewStatusSuccess = "success"
	ViewStatusFailure = "failure"
)

// NewResultView converts a result into its JSON shape
func NewResultView(result InitResult) ResultView {
	switch r := result.(type) {
	case InitSuccess:
		return ResultView{Status: ViewStatusSuccess, Data: newInitDataView(r.Data)}
	case InitFailure:
		if r.Err == nil {
			return ResultView{Status: ViewStatusFailure, Error: &ErrorView{Message: "unknown failure"}}
		}
		view := &ErrorView{Message: r.Err.Error()}
		if initErr := AsInitError(r.Err); initErr != nil {
			view.Code = initErr.Code
			view.Details = initErr.Details
		}
		return ResultView{Status: ViewStatusFailure, Error: view}
	default:
		return ResultView{Status: ViewStatusFailure, Error: &ErrorView{Message: "no result"}}
	}
}

func newInitDataView(data InitData) *InitDataView {
	view := &InitDataView{
		Config:         data.Config,
		PaymentIntent:  data.PaymentIntent,
		AllowedTypes:   data.AllowedTypes,
		PaymentMethods: data.PaymentMethods,
	}
	switch s := data.SavedSelection.(type) {
	case SelectionGooglePay:
		view.SavedSelection = &SelectionView{Type: "google_pay"}
	case SelectionSaved:
		view.SavedSelection = &SelectionView{Type: "saved", PaymentMethodID: s.PaymentMethodID}
	}
	return view
}

// InitRequest is the JSON body transports accept
type InitRequest struct {
	ClientSecret        ClientSecret     `json:"clientSecret"`
	MerchantDisplayName string           `json:"merchantDisplayName,omitempty"`
	Customer            *CustomerConfig  `json:"customer,omitempty"`
	GooglePay           *GooglePayConfig `json:"googlePay,omitempty"`
}

// Configuration returns the session configuration, or nil when the request carries none
func (r InitRequest) Configuration() *Configuration {
	if r.MerchantDisplayName == "" && r.Customer == nil && r.GooglePay == nil {
		return nil
	}
	return &Configuration{
		MerchantDisplayName: r.MerchantDisplayName,
		Customer:            r.Customer,
		GooglePay:           r.GooglePay,
	}
}

// ErrCodeInvalidRequest is reported by transports for undecodable request bodies
const ErrCodeInvalidRequest = "invalid_request"

// NewInvalidRequestView builds the failure view for an undecodable request body
func NewInvalidRequestView(err error) ResultView {
	return ResultView{
		Status: ViewStatusFailure,
		Error:  &ErrorView{Code: ErrCodeInvalidRequest, Message: err.Error()},
	}
}
