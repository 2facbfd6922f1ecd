package spreadsheet

import (
	"github.com/foxseedlab/chanharvest/internal/spreadsheet"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	s := NewExcelizeSpreadsheet()
	do.ProvideValue[spreadsheet.Writer](injector, s)
	do.ProvideValue[spreadsheet.Reader](injector, s)
}
