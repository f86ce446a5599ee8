package entity

import "djnml-feed/internal/domain/codes"

// Coding is the set of djn-coding lists. Company, ISIN and page symbols are
// kept raw; every other axis holds resolved codes.
type Coding struct {
	CompanyCodes    []string     `json:"company"`
	ISINCodes       []string     `json:"isin"`
	PageCodes       []string     `json:"page"`
	IndustryCodes   []codes.Code `json:"industry"`
	GovernmentCodes []codes.Code `json:"government"`
	SubjectCodes    []codes.Code `json:"subject"`
	MarketCodes     []codes.Code `json:"market"`
	ProductCodes    []codes.Code `json:"product"`
	GeoCodes        []codes.Code `json:"geo"`
	StatCodes       []codes.Code `json:"stat"`
	JournalCodes    []codes.Code `json:"journal"`
	RoutingCodes    []codes.Code `json:"routing"`
	ContentCodes    []codes.Code `json:"content"`
	FunctionCodes   []codes.Code `json:"function"`
}

// NewCoding returns a Coding whose lists are all empty rather than nil.
func NewCoding() Coding {
	return Coding{
		CompanyCodes:    []string{},
		ISINCodes:       []string{},
		PageCodes:       []string{},
		IndustryCodes:   []codes.Code{},
		GovernmentCodes: []codes.Code{},
		SubjectCodes:    []codes.Code{},
		MarketCodes:     []codes.Code{},
		ProductCodes:    []codes.Code{},
		GeoCodes:        []codes.Code{},
		StatCodes:       []codes.Code{},
		JournalCodes:    []codes.Code{},
		RoutingCodes:    []codes.Code{},
		ContentCodes:    []codes.Code{},
		FunctionCodes:   []codes.Code{},
	}
}

// Symbols flattens the resolved axes into their symbols, in axis order.
func (c Coding) Symbols() []string {
	var out []string
	for _, list := range [][]codes.Code{
		c.IndustryCodes, c.GovernmentCodes, c.SubjectCodes, c.MarketCodes,
		c.ProductCodes, c.GeoCodes, c.StatCodes, c.JournalCodes,
		c.RoutingCodes, c.ContentCodes, c.FunctionCodes,
	} {
		for _, code := range list {
			out = append(out, code.Symbol())
		}
	}
	return out
}

// SubjectSymbols returns the subject code symbols, never nil.
func (c Coding) SubjectSymbols() []string {
	out := make([]string, 0, len(c.SubjectCodes))
	for _, code := range c.SubjectCodes {
		out = append(out, code.Symbol())
	}
	return out
}
