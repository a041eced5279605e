package router

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAPIPath = "../../../public/docs/v1/openapi.yml"

func TestOpenAPIDocumentIsValid(t *testing.T) {
	doc, err := openapi3.NewLoader().LoadFromFile(openAPIPath)
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{"/v1/checkout", "/admin/paypal/validate", "/admin/stripe/validate"} {
		item := doc.Paths.Find(path)
		require.NotNil(t, item, path)
		assert.NotNil(t, item.Post, path)
	}
}

func TestOpenAPICheckoutRequestSchema(t *testing.T) {
	doc, err := openapi3.NewLoader().LoadFromFile(openAPIPath)
	require.NoError(t, err)

	schema := doc.Components.Schemas["CheckoutRequest"].Value
	require.NotNil(t, schema)
	assert.ElementsMatch(t, []string{"packageId", "slotId", "successUrl", "cancelUrl", "paymentMethod"}, schema.Required)

	body := map[string]interface{}{
		"packageId":     "top50-30",
		"slotId":        float64(3),
		"successUrl":    "https://serverhub.test/dashboard?payment=success",
		"cancelUrl":     "https://serverhub.test/advertise?payment=cancelled",
		"paymentMethod": "bitcoin",
	}
	assert.Error(t, schema.VisitJSON(body))

	body["paymentMethod"] = "paypal"
	assert.NoError(t, schema.VisitJSON(body))
}
