package catalog

import (
	"encoding/json"

	"github.com/voocel/crucible/tools"
)

func init() {
	tools.DescribeToolkit("Gmail",
		"Toolkit for sending, searching, and reading email with Gmail.")

	mustRegister(tools.Spec{
		Name:    "GmailSendEmail",
		Toolkit: "Gmail",
		Summary: "Send an email to one or more recipients.",
		Description: "Sends an email from the current user's account. Addresses " +
			"must be concrete; the service does not resolve display names.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"to": {"type": "string", "description": "A comma-separated list of recipient email addresses."},
				"subject": {"type": "string", "description": "The subject line of the email."},
				"body": {"type": "string", "description": "The body of the email."},
				"cc": {"type": "string", "description": "A comma-separated list of cc email addresses."}
			},
			"required": ["to", "subject", "body"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"success": {"type": "boolean", "description": "Whether the email was successfully sent."},
				"message_id": {"type": "string", "description": "The unique identifier of the sent message."}
			},
			"required": ["success"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "AddressNotFoundException"},
	})

	mustRegister(tools.Spec{
		Name:    "GmailSearchEmails",
		Toolkit: "Gmail",
		Summary: "Search the current user's mailbox.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search keywords, matched against sender, subject, and body."},
				"folder": {"type": "string", "enum": ["inbox", "sent", "drafts", "spam", "trash"], "description": "The folder to search."},
				"max_results": {"type": "integer", "minimum": 1, "maximum": 50, "description": "Maximum number of emails to return."}
			},
			"required": ["query"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"emails": {
					"type": "array",
					"description": "Matching emails, most recent first.",
					"items": {
						"type": "object",
						"properties": {
							"message_id": {"type": "string"},
							"from": {"type": "string"},
							"subject": {"type": "string"},
							"snippet": {"type": "string"},
							"timestamp": {"type": "string"}
						},
						"required": ["message_id", "from", "subject"]
					}
				}
			},
			"required": ["emails"]
		}`),
		ErrorKinds: []string{"InvalidRequestException"},
	})

	mustRegister(tools.Spec{
		Name:    "GmailReadEmail",
		Toolkit: "Gmail",
		Summary: "Read the full content of an email by its message id.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"message_id": {"type": "string", "description": "The unique identifier of the message to read."}
			},
			"required": ["message_id"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"from": {"type": "string"},
				"to": {"type": "string"},
				"subject": {"type": "string"},
				"body": {"type": "string"},
				"timestamp": {"type": "string"}
			},
			"required": ["from", "subject", "body"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "MessageNotFoundException"},
	})
}
