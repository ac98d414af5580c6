package common

const (
	RedisStreamImportJobSettled = "import.job.settled"

	// Filter sentinels meaning "no filter".
	FilterAll = "All"

	ExportFilename = "neuranest_export.csv"

	HeaderSessionID = "X-Session-ID"
	HeaderRequestID = "X-Request-ID"
)
