// Package catalog registers the built-in simulated toolkits into the
// default tool registry. Importing it for side effects is enough:
//
//	import _ "github.com/voocel/crucible/tools/catalog"
package catalog

import (
	"encoding/json"

	"github.com/voocel/crucible/tools"
)

func init() {
	tools.DescribeToolkit("Venmo",
		"Toolkit for sending, requesting, and tracking peer-to-peer payments on Venmo.")

	mustRegister(tools.Spec{
		Name:    "VenmoSendMoney",
		Toolkit: "Venmo",
		Summary: "Send money to a user.",
		Description: "Sends the specified amount from the current user's balance " +
			"to the recipient. The transfer is immediate and cannot be reversed.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"recipient_username": {"type": "string", "description": "The username of the recipient."},
				"amount": {"type": "number", "exclusiveMinimum": 0, "description": "The amount of money to send, in USD."},
				"note": {"type": "string", "description": "A note to accompany the payment."}
			},
			"required": ["recipient_username", "amount"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"success": {"type": "boolean", "description": "Whether the payment was successfully sent."},
				"transaction_id": {"type": "string", "description": "The unique identifier of the transaction."},
				"error_message": {"type": "string", "description": "Present when the payment failed."}
			},
			"required": ["success"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "InsufficientBalanceException", "UserNotFoundException"},
	})

	mustRegister(tools.Spec{
		Name:    "VenmoRequestMoney",
		Toolkit: "Venmo",
		Summary: "Request money from a user.",
		Description: "Creates a payment request to the specified user. The request " +
			"stays pending until the user approves or declines it.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"user_username": {"type": "string", "description": "The username of the user to request money from."},
				"amount": {"type": "number", "exclusiveMinimum": 0, "description": "The amount of money to request, in USD."},
				"note": {"type": "string", "description": "A note to accompany the request."}
			},
			"required": ["user_username", "amount"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"success": {"type": "boolean", "description": "Whether the request was successfully created."},
				"request_id": {"type": "string", "description": "The unique identifier of the payment request."},
				"error_message": {"type": "string", "description": "Present when the request failed."}
			},
			"required": ["success"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "UserNotFoundException"},
	})

	mustRegister(tools.Spec{
		Name:    "VenmoGetTransactionHistory",
		Toolkit: "Venmo",
		Summary: "Retrieve the current user's recent transactions.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"max_results": {"type": "integer", "minimum": 1, "maximum": 100, "description": "Maximum number of transactions to return."}
			},
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"transactions": {
					"type": "array",
					"description": "Recent transactions, most recent first.",
					"items": {
						"type": "object",
						"properties": {
							"transaction_id": {"type": "string"},
							"counterparty": {"type": "string"},
							"amount": {"type": "number"},
							"note": {"type": "string"},
							"timestamp": {"type": "string"}
						},
						"required": ["transaction_id", "counterparty", "amount"]
					}
				}
			},
			"required": ["transactions"]
		}`),
		ErrorKinds: []string{"InvalidRequestException"},
	})
}

func mustRegister(spec tools.Spec) {
	if err := tools.Register(spec); err != nil {
		panic(err)
	}
}
