package spreadsheet

// Table is a single-sheet tabular document. Every row has one cell per
// header column.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

type Writer interface {
	// Write creates the file at path. Errors are I/O errors only.
	Write(path string, table Table) error
}

type Reader interface {
	// Read returns all rows of the named sheet as text, header first.
	Read(path, sheet string) ([][]string, error)
}

// ContentType is the media type of the files produced by Writer.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Extension is the file extension matching ContentType.
const Extension = ".xlsx"
