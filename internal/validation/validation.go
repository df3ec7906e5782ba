// Package validation checks request bodies against JSON schemas before they
// are decoded into domain types.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Cheertaboi/shop-microservices/internal/service"
)

// Schema is a compiled JSON schema for one request body.
type Schema struct {
	s *gojsonschema.Schema
}

func mustCompile(src string) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic("validation: bad schema: " + err.Error())
	}
	return &Schema{s: s}
}

var (
	Register      = mustCompile(schemaRegister)
	Login         = mustCompile(schemaLogin)
	ProfileUpdate = mustCompile(schemaProfileUpdate)
	ProductCreate = mustCompile(schemaProductCreate)
	ProductUpdate = mustCompile(schemaProductUpdate)
	StockAdjust   = mustCompile(schemaStockAdjust)
	CartAdd       = mustCompile(schemaCartAdd)
	CartUpdate    = mustCompile(schemaCartUpdate)
	OrderCreate   = mustCompile(schemaOrderCreate)
	OrderStatus   = mustCompile(schemaOrderStatus)
)

// Validate checks body against the schema. It returns nil or a
// *service.ValidationError keyed by the offending field.
func (s *Schema) Validate(body []byte) error {
	verr := service.NewValidationError()
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	}

	res, err := s.s.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		verr.Add("body", "Invalid JSON")
		return verr
	}
	for _, e := range res.Errors() {
		verr.Add(fieldOf(e), e.Description())
	}
	return verr.OrNil()
}

// rootField is how gojsonschema names the document itself.
const rootField = "(root)"

func fieldOf(e gojsonschema.ResultError) string {
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			if e.Field() == rootField {
				return p
			}
			return e.Field() + "." + p
		}
	}
	if e.Field() == rootField {
		return "body"
	}
	return e.Field()
}
