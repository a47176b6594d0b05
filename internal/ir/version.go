package ir

// Version constants recorded with every stored run.
const (
	// IRVersion is the program representation version.
	IRVersion = "1"

	// EngineVersion is the interpreter version.
	EngineVersion = "0.1.0"
)
