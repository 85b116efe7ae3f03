package catalog

import (
	"encoding/json"

	"github.com/voocel/crucible/tools"
)

func init() {
	tools.DescribeToolkit("Teladoc",
		"Toolkit for telehealth consultations: patient records, prescriptions, and appointments.")

	mustRegister(tools.Spec{
		Name:    "TeladocViewPatientRecord",
		Toolkit: "Teladoc",
		Summary: "View a patient's medical record.",
		Description: "Returns the patient's medical history, current medications, " +
			"and known allergies. Requires a concrete patient id.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"patient_id": {"type": "string", "description": "The unique identifier of the patient."}
			},
			"required": ["patient_id"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"date_of_birth": {"type": "string"},
				"medical_history": {"type": "array", "items": {"type": "string"}},
				"current_medications": {"type": "array", "items": {"type": "string"}},
				"allergies": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["name", "medical_history"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "PatientNotFoundException"},
	})

	mustRegister(tools.Spec{
		Name:    "TeladocPrescribeMedication",
		Toolkit: "Teladoc",
		Summary: "Issue a prescription for a patient.",
		Description: "Submits a prescription to the patient's pharmacy. Dosage and " +
			"refills must match the prescribing clinician's authorization.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"patient_id": {"type": "string", "description": "The unique identifier of the patient."},
				"medication": {"type": "string", "description": "The name of the medication to prescribe."},
				"dosage": {"type": "string", "description": "The dosage, e.g. \"50mg twice daily\"."},
				"refills": {"type": "integer", "minimum": 0, "maximum": 12, "description": "Number of authorized refills."}
			},
			"required": ["patient_id", "medication", "dosage"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"success": {"type": "boolean", "description": "Whether the prescription was issued."},
				"prescription_id": {"type": "string", "description": "The unique identifier of the prescription."},
				"error_message": {"type": "string", "description": "Present when the prescription was rejected."}
			},
			"required": ["success"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "PatientNotFoundException", "AuthorizationException"},
	})

	mustRegister(tools.Spec{
		Name:    "TeladocScheduleAppointment",
		Toolkit: "Teladoc",
		Summary: "Schedule a telehealth appointment for a patient.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"patient_id": {"type": "string", "description": "The unique identifier of the patient."},
				"specialty": {"type": "string", "description": "The clinical specialty requested."},
				"preferred_time": {"type": "string", "description": "The patient's preferred time slot, ISO 8601."}
			},
			"required": ["patient_id", "specialty"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"success": {"type": "boolean"},
				"appointment_id": {"type": "string"},
				"scheduled_time": {"type": "string"}
			},
			"required": ["success"]
		}`),
		ErrorKinds: []string{"InvalidRequestException", "PatientNotFoundException"},
	})
}
