package parse

import (
	"fmt"
	"strings"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/domain/markup"
)

// axis describes one djn-coding list. Exactly one of raw and coded is set.
type axis struct {
	name  string
	elem  string
	raw   func(c *entity.Coding, symbols []string)
	coded func(c *entity.Coding, list []codes.Code)
}

var codingAxes = []axis{
	{name: "company", elem: "djn-company", raw: func(c *entity.Coding, s []string) { c.CompanyCodes = s }},
	{name: "isin", elem: "djn-isin", raw: func(c *entity.Coding, s []string) { c.ISINCodes = s }},
	{name: "page", elem: "djn-page", raw: func(c *entity.Coding, s []string) { c.PageCodes = s }},
	{name: "industry", elem: "djn-industry", coded: func(c *entity.Coding, l []codes.Code) { c.IndustryCodes = l }},
	{name: "government", elem: "djn-government", coded: func(c *entity.Coding, l []codes.Code) { c.GovernmentCodes = l }},
	{name: "subject", elem: "djn-subject", coded: func(c *entity.Coding, l []codes.Code) { c.SubjectCodes = l }},
	{name: "market", elem: "djn-market", coded: func(c *entity.Coding, l []codes.Code) { c.MarketCodes = l }},
	{name: "product", elem: "djn-product", coded: func(c *entity.Coding, l []codes.Code) { c.ProductCodes = l }},
	{name: "geo", elem: "djn-geo", coded: func(c *entity.Coding, l []codes.Code) { c.GeoCodes = l }},
	{name: "stat", elem: "djn-stat", coded: func(c *entity.Coding, l []codes.Code) { c.StatCodes = l }},
	{name: "journal", elem: "djn-journal", coded: func(c *entity.Coding, l []codes.Code) { c.JournalCodes = l }},
	{name: "routing", elem: "djn-routing", coded: func(c *entity.Coding, l []codes.Code) { c.RoutingCodes = l }},
	{name: "content", elem: "djn-content", coded: func(c *entity.Coding, l []codes.Code) { c.ContentCodes = l }},
	{name: "function", elem: "djn-function", coded: func(c *entity.Coding, l []codes.Code) { c.FunctionCodes = l }},
}

// buildCoding fills every axis from symbolsFor. Raw axes keep their symbols;
// the others go through the registry and an unknown symbol aborts.
func buildCoding(reg *codes.Registry, symbolsFor func(a axis) []string) (entity.Coding, error) {
	c := entity.NewCoding()
	for _, a := range codingAxes {
		symbols := symbolsFor(a)
		if a.raw != nil {
			if symbols == nil {
				symbols = []string{}
			}
			a.raw(&c, symbols)
			continue
		}
		list, err := reg.ResolveAll(symbols)
		if err != nil {
			return entity.Coding{}, fmt.Errorf("coding %s: %w", a.name, err)
		}
		a.coded(&c, list)
	}
	return c, nil
}

// readCoding extracts the coding lists below a djn-mdata element.
func readCoding(reg *codes.Registry, mdata markup.Node) (entity.Coding, error) {
	return buildCoding(reg, func(a axis) []string {
		nodes := mdata.Find("djn-coding/" + a.elem + "/c")
		symbols := make([]string, 0, len(nodes))
		for _, n := range nodes {
			symbols = append(symbols, strings.TrimSpace(n.Text()))
		}
		return symbols
	})
}
