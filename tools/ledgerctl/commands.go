package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"kunafa-ledger/internal/app"
	"kunafa-ledger/internal/sales/application"
	sales "kunafa-ledger/internal/sales/domain"
	"kunafa-ledger/internal/sales/interfaces"
	"kunafa-ledger/internal/sales/locale"
)

// env is handed to every subcommand by Execute.
type env struct {
	rt  *app.Runtime
	out io.Writer
}

func envFrom(args []interface{}) (*env, bool) {
	if len(args) == 0 {
		return nil, false
	}
	e, ok := args[0].(*env)
	return e, ok && e != nil && e.rt != nil
}

// Register adds the ledger subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&listCmd{}, "ledger")
	c.Register(&addCmd{}, "ledger")
	c.Register(&editCmd{}, "ledger")
	c.Register(&deleteCmd{}, "ledger")
	c.Register(&statsCmd{}, "ledger")
	c.Register(&importCmd{}, "files")
	c.Register(&exportCmd{}, "files")
}

// viewFlags selects a filtered view of the ledger.
type viewFlags struct {
	period string
	date   string
	locale string
}

func (v *viewFlags) set(f *flag.FlagSet) {
	f.StringVar(&v.period, "period", "all", "Period: all, month or week.")
	f.StringVar(&v.date, "date", "", "Exact day DD/MM/YYYY. Overrides -period when valid.")
	f.StringVar(&v.locale, "locale", "", "Output locale: fr or ar. Defaults to the configured locale.")
}

func (v *viewFlags) resolve(e *env) (application.Query, locale.Locale, error) {
	period, err := sales.ParsePeriod(v.period)
	if err != nil {
		return application.Query{}, "", err
	}
	loc := e.rt.Config.UILocale()
	if v.locale != "" {
		if loc, err = locale.Parse(v.locale); err != nil {
			return application.Query{}, "", err
		}
	}
	return application.Query{Period: period, SearchDate: v.date}, loc, nil
}

type listCmd struct {
	view  viewFlags
	pages int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list sales, most recent first" }
func (*listCmd) Usage() string {
	return `ledgerctl list [-period all|month|week] [-date DD/MM/YYYY] [-locale fr|ar] [-pages N]

  Prints the selected sales and their total. With -pages only the first N pages
  of the configured page size are printed; the total still covers the whole view.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	c.view.set(f)
	f.IntVar(&c.pages, "pages", 0, "Number of pages to print. 0 prints every sale.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	query, loc, err := c.view.resolve(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	labels := locale.LabelsFor(loc)
	records := application.Filter(e.rt.Ledger.GetAll(ctx), query, sales.Today(sales.SystemClock{}))

	fmt.Fprintln(e.out, application.ExportLabel(query, loc))
	if len(records) == 0 {
		fmt.Fprintln(e.out, labels.NoSales)
		return subcommands.ExitSuccess
	}
	shown := records
	var pager *application.Pager
	if c.pages > 0 {
		pager = application.NewPager(e.rt.Config.PageSize)
		for pager.Pages() < c.pages {
			pager.ShowMore()
		}
		shown = pager.Window(records)
	}

	w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\t%s\t%s\t%s\n", labels.DateColumn, labels.TypeColumn, labels.AmountColumn, labels.NoteColumn)
	for _, r := range shown {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, locale.FormatLong(r.Date, loc), labels.TypeLabel(r.Type), r.Amount.StringFixed(2), r.Note)
	}
	fmt.Fprintf(w, "\t\t\t%s\t%s\n", sales.Total(records).StringFixed(2), labels.Total)
	_ = w.Flush()
	if pager != nil && pager.HasMore(records) {
		fmt.Fprintf(e.out, "%d more, use -pages %d\n", len(records)-len(shown), pager.Pages()+1)
	}
	return subcommands.ExitSuccess
}

type addCmd struct {
	date     string
	amount   string
	saleType string
	note     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a sale" }
func (*addCmd) Usage() string {
	return `ledgerctl add -amount <DH> [-date YYYY-MM-DD] [-type kunafa|flan] [-note <text>]

  Appends a sale. The date defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "Sale day, YYYY-MM-DD or DD/MM/YYYY. Defaults to today.")
	f.StringVar(&c.amount, "amount", "", "Amount in DH. ',' or '.' as decimal separator.")
	f.StringVar(&c.saleType, "type", "", "Sale type: kunafa, flan or empty.")
	f.StringVar(&c.note, "note", "", "Free text note.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	day := sales.Today(sales.SystemClock{})
	if strings.TrimSpace(c.date) != "" {
		parsed, err := sales.ParseDate(strings.TrimSpace(c.date))
		if err != nil {
			parsed, err = sales.ParseStrictDMY(c.date)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		day = parsed
	}
	amount, err := sales.ParseAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	saleType, err := sales.ParseSaleType(c.saleType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing type: %v\n", err)
		return subcommands.ExitUsageError
	}
	record, err := e.rt.Ledger.Append(ctx, sales.Draft{Date: day, Amount: amount, Type: saleType, Note: c.note})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding sale: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(e.out, record.ID)
	return subcommands.ExitSuccess
}

type editCmd struct {
	date   string
	amount string
	note   string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change the date, amount or note of a sale" }
func (*editCmd) Usage() string {
	return `ledgerctl edit [-date YYYY-MM-DD] [-amount <DH>] [-note <text>] <id>

  Only the given fields change. The type of a sale cannot be edited.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "New sale day, YYYY-MM-DD or DD/MM/YYYY.")
	f.StringVar(&c.amount, "amount", "", "New amount in DH.")
	f.StringVar(&c.note, "note", "", "New note. Use -note= to keep it unchanged.")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one id is required")
		return subcommands.ExitUsageError
	}
	var patch application.Patch
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if set["date"] {
		day, err := sales.ParseDate(strings.TrimSpace(c.date))
		if err != nil {
			day, err = sales.ParseStrictDMY(c.date)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		patch.Date = &day
	}
	if set["amount"] {
		amount, err := sales.ParseAmount(c.amount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
			return subcommands.ExitUsageError
		}
		patch.Amount = &amount
	}
	if set["note"] {
		patch.Note = &c.note
	}
	record, err := e.rt.Ledger.Update(ctx, f.Arg(0), patch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error editing sale: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(e.out, "%s %s %s\n", record.ID, record.Date, record.Amount.StringFixed(2))
	return subcommands.ExitSuccess
}

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete sales by id" }
func (*deleteCmd) Usage() string {
	return `ledgerctl delete <id>...

  Removes each sale whose id matches. Unknown ids are reported.
`
}

func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one id is required")
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, id := range f.Args() {
		if !e.rt.Ledger.RemoveByID(ctx, id) {
			fmt.Fprintf(os.Stderr, "Error: no sale with id %q\n", id)
			status = subcommands.ExitFailure
		}
	}
	return status
}

type statsCmd struct {
	locale string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show current month totals and the last sale" }
func (*statsCmd) Usage() string {
	return `ledgerctl stats [-locale fr|ar]
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.locale, "locale", "", "Output locale: fr or ar.")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	loc := e.rt.Config.UILocale()
	if c.locale != "" {
		parsed, err := locale.Parse(c.locale)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		loc = parsed
	}
	labels := locale.LabelsFor(loc)
	stats := application.Stats(e.rt.Ledger.GetAll(ctx), sales.Today(sales.SystemClock{}), loc)
	fmt.Fprintf(e.out, "%s: %s %s (%d)\n", stats.Month, stats.TotalMonth.StringFixed(2), labels.Currency, stats.CountMonth)
	if stats.LastSale != nil {
		fmt.Fprintf(e.out, "%s: %s %s\n", stats.LastSale.Label, stats.LastSale.Amount.StringFixed(2), labels.Currency)
	}
	return subcommands.ExitSuccess
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import sales from exported workbooks" }
func (*importCmd) Usage() string {
	return `ledgerctl import <file.xlsx>...

  Appends the rows not already in the ledger and reports imported and skipped counts.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a workbook path is required")
		return subcommands.ExitUsageError
	}
	for _, name := range f.Args() {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		result, err := e.rt.Importer.Import(ctx, file)
		_ = file.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(e.out, "%s: imported=%d skipped=%d\n", name, result.Imported, result.Skipped)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	view   viewFlags
	format string
	dir    string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the selected sales to xlsx or pdf" }
func (*exportCmd) Usage() string {
	return `ledgerctl export [-format xlsx|pdf] [-o <dir>] [-period ...] [-date ...] [-locale ...]

  Writes <product>-Ventes-<YYYY-MM-DD>.<ext> into the output directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.view.set(f)
	f.StringVar(&c.format, "format", "xlsx", "Output format: xlsx or pdf.")
	f.StringVar(&c.dir, "o", ".", "Output directory.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e, ok := envFrom(args)
	if !ok {
		return subcommands.ExitFailure
	}
	query, loc, err := c.view.resolve(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	today := sales.Today(sales.SystemClock{})
	records := application.Filter(e.rt.Ledger.GetAll(ctx), query, today)
	label := application.ExportLabel(query, loc)

	var data []byte
	switch c.format {
	case "xlsx":
		data, err = interfaces.BuildSalesXLSX(records, label, loc)
	case "pdf":
		data, err = interfaces.BuildSalesPDF(records, label, loc, interfaces.ExportOptions{
			ProductName: e.rt.Config.ProductName,
			FontPath:    e.rt.Config.PDFFontPath,
			Today:       today,
		})
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}

	name := filepath.Join(c.dir, interfaces.ExportFileName(e.rt.Config.ProductName, today, c.format))
	if err := writeFileAtomic(name, data); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", name, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(e.out, name)
	return subcommands.ExitSuccess
}

// writeFileAtomic writes data next to name and renames it into place, so name is
// either absent or complete.
func writeFileAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, name); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
