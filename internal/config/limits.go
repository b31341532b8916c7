package config

const (
	// MaxNotebookNameLength caps notebook names. Limited to 255 to fit
	// in a VARCHAR(255) column on the Postgres backend and to keep names
	// short and descriptive.
	MaxNotebookNameLength = 255

	// MaxNotebookDescriptionLength caps notebook descriptions.
	MaxNotebookDescriptionLength = 2000
)
