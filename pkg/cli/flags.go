// Package cli wires spec.md §6's configuration surface to a Cobra
// command tree: one flag per pkg/config.Config field, collected into a
// single Flags struct and validated only once config.Config.Validate
// runs, following pkg/cli/flags.go's pattern of gathering raw flag
// values before any context struct is built.
package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/vishalbelsare/sindy-3/pkg/config"
	"github.com/vishalbelsare/sindy-3/pkg/csvsource"
	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
)

// Flags holds every raw command-line value the run command accepts,
// before it is resolved into a config.Config and a table list.
type Flags struct {
	Inputs []string
	Output string

	NumColumnBits             int
	MaxArity                  int
	OnlyCountInds             bool
	MaxColumns                int
	SampleRows                int
	DropNulls                 bool
	NotUseGroupOperators      bool
	ExcludeVoidInds           bool
	Restriction               string
	Generator                 string
	FilterTrivialInds         bool
	ApproximateDistinctCounts bool
	CombinationChunkSize      int

	FieldSeparator          string
	NullString              string
	DropDifferingLines      bool
	IgnoreLeadingWhiteSpace bool
	StrictQuotes            bool
	NoHeader                bool

	Verbosity int
}

// registerFlags binds fs to f, applying the numeric defaults of
// config.New and the CSV defaults of csvsource.DefaultOptions().
// --restriction and --generator default to none and apriori, which
// config.New leaves unset.
func registerFlags(fs *pflag.FlagSet, f *Flags) {
	fs.StringArrayVar(&f.Inputs, "input", nil, "path to a CSV input table (repeatable)")
	fs.StringVar(&f.Output, "output", "-", "path to write discovered INDs as JSON lines, or - for stdout")

	fs.IntVar(&f.NumColumnBits, "num-column-bits", 16, "bit width of the column-index field in a packed column id")
	fs.IntVar(&f.MaxArity, "max-arity", -1, "stop after discovering INDs of this arity; -1 exhausts every arity")
	fs.BoolVar(&f.OnlyCountInds, "only-count-inds", false, "stop after the unary pass and report only unary INDs")
	fs.IntVar(&f.MaxColumns, "max-columns", -1, "cap the number of columns read per table; -1 reads every column")
	fs.IntVar(&f.SampleRows, "sample-rows", -1, "cap the number of rows read per table; -1 reads every row")
	fs.BoolVar(&f.DropNulls, "drop-nulls", false, "discard null cells instead of emitting them (required: no implicit default)")
	fs.BoolVar(&f.NotUseGroupOperators, "not-use-group-operators", false, "hint the execution substrate to avoid combiner-style group operators")
	fs.BoolVar(&f.ExcludeVoidInds, "exclude-void-inds", false, "exclude void INDs from candidate generation")
	fs.StringVar(&f.Restriction, "restriction", "none", "n-ary IND restriction: none, no-repetitions, or dep-ref-disjoint")
	fs.StringVar(&f.Generator, "generator", "apriori", "candidate generator strategy: mind, apriori, or binder")
	fs.BoolVar(&f.FilterTrivialInds, "filter-trivial-inds", false, "drop reflexive R.a ⊆ R.a self-INDs from the result")
	fs.BoolVar(&f.ApproximateDistinctCounts, "approximate-distinct-counts", false, "use a HyperLogLog-backed approximate distinct-value counter")
	fs.IntVar(&f.CombinationChunkSize, "combination-chunk-size", 0, "cap column combinations validated per substrate job; <= 0 means one chunk")

	fs.StringVar(&f.FieldSeparator, "field-separator", ",", "CSV field separator")
	fs.StringVar(&f.NullString, "null-string", "", "string that represents a null value in the CSV input")
	fs.BoolVar(&f.DropDifferingLines, "drop-differing-lines", false, "silently skip CSV rows whose field count does not match the header")
	fs.BoolVar(&f.IgnoreLeadingWhiteSpace, "ignore-leading-whitespace", false, "trim leading whitespace from CSV fields")
	fs.BoolVar(&f.StrictQuotes, "strict-quotes", false, "reject malformed CSV quoting instead of tolerating it")
	fs.BoolVar(&f.NoHeader, "no-header", false, "treat the first row of every input as data, not a header")

	fs.IntVar(&f.Verbosity, "verbosity", 0, "verbosity level for log.VEventf tracing; 0 disables it")
}

// restrictionFlag and generatorFlag map the --restriction/--generator
// string flags to their config.Config enum values.
var restrictionFlag = map[string]config.NaryIndRestriction{
	"none":             config.RestrictionNone,
	"no-repetitions":   config.RestrictionNoRepetitions,
	"dep-ref-disjoint": config.RestrictionDepRefDisjoint,
}

var generatorFlag = map[string]config.CandidateGenerator{
	"mind":    config.GeneratorMind,
	"apriori": config.GeneratorApriori,
	"binder":  config.GeneratorBinder,
}

// toConfig resolves f into a config.Config, rejecting unrecognized
// --restriction/--generator values as a Configuration error rather
// than silently falling back to a default strategy.
func (f *Flags) toConfig() (config.Config, error) {
	restriction, ok := restrictionFlag[strings.ToLower(f.Restriction)]
	if !ok {
		return config.Config{}, sindyerr.MarkConfiguration("unknown --restriction %q", f.Restriction)
	}
	generator, ok := generatorFlag[strings.ToLower(f.Generator)]
	if !ok {
		return config.Config{}, sindyerr.MarkConfiguration("unknown --generator %q", f.Generator)
	}

	cfg := config.New(f.DropNulls)
	cfg.NumColumnBits = f.NumColumnBits
	cfg.MaxArity = f.MaxArity
	cfg.OnlyCountInds = f.OnlyCountInds
	cfg.MaxColumns = f.MaxColumns
	cfg.SampleRows = f.SampleRows
	cfg.NotUseGroupOperators = f.NotUseGroupOperators
	cfg.ExcludeVoidIndsFromCandidateGeneration = f.ExcludeVoidInds
	cfg.NaryIndRestriction = restriction
	cfg.CandidateGenerator = generator
	cfg.FilterTrivialINDs = f.FilterTrivialInds
	cfg.ApproximateDistinctCounts = f.ApproximateDistinctCounts
	cfg.CombinationChunkSize = f.CombinationChunkSize

	cfg.CSV = csvsource.DefaultOptions()
	if f.FieldSeparator != "" {
		cfg.CSV.FieldSeparator = []rune(f.FieldSeparator)[0]
	}
	cfg.CSV.NullString = f.NullString
	cfg.CSV.DropDifferingLines = f.DropDifferingLines
	cfg.CSV.IgnoreLeadingWhiteSpace = f.IgnoreLeadingWhiteSpace
	cfg.CSV.UseStrictQuotes = f.StrictQuotes
	cfg.CSV.HasHeader = !f.NoHeader

	return cfg, nil
}

// toTables opens one csvsource.FileTable per --input path.
func (f *Flags) toTables() ([]csvsource.Table, error) {
	if len(f.Inputs) == 0 {
		return nil, sindyerr.MarkConfiguration("at least one --input is required")
	}
	opts := csvsource.DefaultOptions()
	if f.FieldSeparator != "" {
		opts.FieldSeparator = []rune(f.FieldSeparator)[0]
	}
	opts.NullString = f.NullString
	opts.DropDifferingLines = f.DropDifferingLines
	opts.IgnoreLeadingWhiteSpace = f.IgnoreLeadingWhiteSpace
	opts.UseStrictQuotes = f.StrictQuotes
	opts.HasHeader = !f.NoHeader

	tables := make([]csvsource.Table, len(f.Inputs))
	for i, path := range f.Inputs {
		t, err := csvsource.NewFileTable(path, opts)
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	return tables, nil
}
