package cli

var (
	PrintValidationSummary = printValidationSummary
	RunExport              = runExport
	IndexConfig            = indexConfig
	IndexChanges           = indexChanges
)
