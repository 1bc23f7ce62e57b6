package model

// Field is a canonical field identifier. Every flow maps its header
// labels onto a closed subset of these.
type Field string

const (
	FieldID         Field = "id"
	FieldName       Field = "name"
	FieldCity       Field = "city"
	FieldIBGECode   Field = "ibge_code"
	FieldMayor      Field = "mayor"
	FieldViceMayor  Field = "vice_mayor"
	FieldParty      Field = "party"
	FieldPosition   Field = "position"
	FieldPopulation Field = "population"
	FieldVoters     Field = "voters"
	FieldVotes      Field = "votes"
	FieldValidVotes Field = "valid_votes"
	FieldStatus     Field = "status"
	FieldRegion     Field = "region"
	FieldPhone      Field = "phone"
	FieldEmail      Field = "email"
	FieldWebsite    Field = "website"
	FieldKind       Field = "kind"
	FieldCompany    Field = "company"
	FieldRole       Field = "role"
	FieldElected    Field = "elected"
)

type FlowName string

const (
	FlowCities   FlowName = "cidades"
	FlowCouncil  FlowName = "vereadores"
	FlowElection FlowName = "resultados"
	FlowVotes    FlowName = "votos"
	FlowPress    FlowName = "imprensa"
	FlowContacts FlowName = "contatos"
)

// RawRecord is one parsed line before header mapping.
type RawRecord struct {
	Line  int
	Cells []string
}

// HeaderMap maps a column position to its canonical field. Labels keeps
// the cleaned header text of every column, mapped or not.
type HeaderMap struct {
	Fields map[int]Field
	Labels []string
}

// Has reports whether any column maps to f.
func (h HeaderMap) Has(f Field) bool {
	for _, v := range h.Fields {
		if v == f {
			return true
		}
	}
	return false
}

// CandidateRecord values are string or int64.
type CandidateRecord struct {
	Line   int           `json:"line"`
	Values map[Field]any `json:"values"`
}

func (c CandidateRecord) String(f Field) string {
	s, _ := c.Values[f].(string)
	return s
}

func (c CandidateRecord) Int(f Field) (int64, bool) {
	v, ok := c.Values[f].(int64)
	return v, ok
}

type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e RowError) Error() string { return e.Message }

type MatchResult struct {
	Record  CandidateRecord `json:"record"`
	Key     string          `json:"key"`
	RefID   string          `json:"refId,omitempty"`
	Matched bool            `json:"matched"`
}

type ImportSummary struct {
	Total          int      `json:"total"`
	Matched        int      `json:"matched"`
	Unmatched      int      `json:"unmatched"`
	UnmatchedNames []string `json:"unmatchedNames"`
}

// Preview is everything the user reviews before confirming an import.
type Preview struct {
	Flow      FlowName      `json:"flow"`
	Format    string        `json:"format"`
	Delimiter string        `json:"delimiter,omitempty"`
	Columns   []Column      `json:"columns"`
	Results   []MatchResult `json:"results"`
	RowErrors []RowError    `json:"rowErrors"`
	Messages  []string      `json:"messages"`
	Summary   ImportSummary `json:"summary"`

	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Suggestion is a near miss for an unmatched key. Advisory only.
type Suggestion struct {
	Name      string  `json:"name"`
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

// Column describes one header cell and what it was mapped to ("" = ignored).
type Column struct {
	Label string `json:"label"`
	Field Field  `json:"field,omitempty"`
}

// City is a stored municipality as seen by the admin listing.
type City struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	IBGECode   *int64  `db:"ibge_code" json:"ibgeCode,omitempty"`
	Mayor      *string `db:"mayor" json:"mayor,omitempty"`
	ViceMayor  *string `db:"vice_mayor" json:"viceMayor,omitempty"`
	Party      *string `db:"party" json:"party,omitempty"`
	Population *int64  `db:"population" json:"population,omitempty"`
	Voters     *int64  `db:"voters" json:"voters,omitempty"`
	ValidVotes *int64  `db:"valid_votes" json:"validVotes,omitempty"`
	MayorVotes *int64  `db:"mayor_votes" json:"mayorVotes,omitempty"`
	Status     *string `db:"status" json:"status,omitempty"`
	Region     *string `db:"region" json:"region,omitempty"`
}

// CityRef is the minimum needed to resolve names to city ids.
type CityRef struct {
	ID    string  `db:"id"`
	Name  string  `db:"name"`
	Mayor *string `db:"mayor"`
}

// CityStatus feeds the map colouring.
type CityStatus struct {
	ID     string  `db:"id" json:"id"`
	Status *string `db:"status" json:"status"`
}
