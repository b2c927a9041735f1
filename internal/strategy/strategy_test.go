package strategy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuiltin(t *testing.T) *Registry {
	t.Helper()
	classes, err := DefaultClasses()
	require.NoError(t, err)
	r, err := Builtin(classes)
	require.NoError(t, err)
	return r
}

func evaluate(t *testing.T, r *Registry, name, query string) Outcome {
	t.Helper()
	ctor, ok := r.Resolve(name)
	require.True(t, ok, "strategy %q not registered", name)
	return ctor(Params{Query: query, Page: 1, PerPage: 10}).Evaluate()
}

func TestBuiltin_Catalogue(t *testing.T) {
	r := newBuiltin(t)

	scoring := []string{
		"wordmark", "attorney", "owner_name", "dba", "description_of_mark", "disclaimer_statements", "phonetic",
	}
	unscored := []string{
		"section_12c", "section_8", "section_15", "change_registration", "concurrent_use",
		"concurrent_use_proceeding", "color_drawing", "three_d_drawing", "standard_character_claim",
		"acquired_distinctiveness_whole", "acquired_distinctiveness_part", "foreign_priority_claim",
		"foreign_registration", "extension_protection", "no_current_basis", "no_initial_basis",
		"priority_claimed", "first_refusal", "prior_registration_present", "assignment_recorded", "name_change",
		"filing_date", "registration_date", "cancellation_date", "renewal_date", "published_opposition_date",
		"foreign_filing_date", "foreign_registration_date", "foreign_renewal_date", "int_reg_date",
		"int_pub_date", "auto_protection_date", "international_renewal_date", "priority_date_range",
		"serial_number", "registration_number", "international_class", "us_class", "design_code",
		"int_reg_number", "international_status_code", "owner_legal_entity", "owner_party_type",
		"drawing_code_type", "coordinated_class",
	}

	for _, name := range scoring {
		e, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.True(t, e.Scoring, name)
		assert.True(t, e.New(Params{}).IsScoring(), name)
	}
	for _, name := range unscored {
		e, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.False(t, e.Scoring, name)
		assert.False(t, e.New(Params{}).IsScoring(), name)
	}
	assert.Equal(t, len(scoring)+len(unscored), r.Len())
}

func TestRegistry_Resolve(t *testing.T) {
	r := newBuiltin(t)

	_, ok := r.Resolve("unknown_name")
	assert.False(t, ok)

	ctor, ok := r.Resolve("wordmark")
	require.True(t, ok)
	assert.Equal(t, "wordmark", ctor(Params{Query: "acme"}).Name())
}

func TestRegistry_Rejects(t *testing.T) {
	ok := presenceEntry("a", "SELECT 1")

	_, err := NewRegistry(ok, ok)
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry(Entry{Name: "", New: ok.New})
	assert.Error(t, err)

	_, err = NewRegistry(Entry{Name: "b"})
	assert.Error(t, err)
}

func TestRegistry_EntriesSorted(t *testing.T) {
	r, err := NewRegistry(presenceEntry("b", "SELECT 1"), presenceEntry("a", "SELECT 1"))
	require.NoError(t, err)
	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
}

func TestPresence(t *testing.T) {
	r := newBuiltin(t)

	o := evaluate(t, r, "section_12c", "ignored")
	require.True(t, o.IsMatched())
	assert.Equal(t, "SELECT h.serial_number FROM casefileheader h WHERE h.section_12c_in IS TRUE", o.Predicate().SQL())
	_, scored := o.Score()
	assert.False(t, scored)

	o = evaluate(t, r, "foreign_priority_claim", "")
	assert.Equal(t, 3, strings.Count(o.Predicate().SQL(), " IS TRUE"))
	assert.Equal(t, 2, strings.Count(o.Predicate().SQL(), " OR "))

	o = evaluate(t, r, "prior_registration_present", "")
	assert.Equal(t, "SELECT x.serial_number FROM priorregistrationapplication x", o.Predicate().SQL())
}

func TestSimilarity(t *testing.T) {
	r := newBuiltin(t)

	o := evaluate(t, r, "wordmark", "  ACME  ")
	require.True(t, o.IsMatched())
	p := o.Predicate()
	assert.Contains(t, p.SQL(), "similarity(coalesce(x.mark_identification, ''), ?) > 0.3")
	assert.Contains(t, p.SQL(), "ILIKE ?")
	assert.Equal(t, []any{"ACME", "%ACME%"}, p.Args())

	sc, ok := o.Score()
	require.True(t, ok)
	assert.Equal(t, "wordmark", sc.Source())
	assert.Contains(t, sc.SQL(), "AS sn")
	assert.Contains(t, sc.SQL(), "* 100")
	assert.Equal(t, []any{"ACME", "ACME", "%ACME%"}, sc.Args())
	assert.Equal(t, strings.Count(sc.SQL(), "?"), len(sc.Args()))
}

func TestSimilarity_EscapesLikePattern(t *testing.T) {
	r := newBuiltin(t)
	o := evaluate(t, r, "attorney", `100%_sure\`)
	assert.Equal(t, `%100\%\_sure\\%`, o.Predicate().Args()[1])
}

func TestSimilarity_Disclaimer(t *testing.T) {
	r := newBuiltin(t)
	o := evaluate(t, r, "disclaimer_statements", "coffee")
	require.True(t, o.IsMatched())

	p := o.Predicate()
	assert.Contains(t, p.SQL(), "'D00000'")
	assert.Contains(t, p.SQL(), "'D10000'")
	assert.Contains(t, p.SQL(), " UNION ")
	assert.Len(t, p.Args(), 4)

	sc, ok := o.Score()
	require.True(t, ok)
	assert.Contains(t, sc.SQL(), "UNION ALL")
	assert.Len(t, sc.Args(), 6)
}

func TestSimilarity_EmptyQuery(t *testing.T) {
	r := newBuiltin(t)
	o := evaluate(t, r, "owner_name", "   ")
	assert.False(t, o.IsMatched())
	_, ok := o.Score()
	assert.False(t, ok)
	assert.Equal(t, "empty query", o.Reason())
}

func TestPhonetic(t *testing.T) {
	r := newBuiltin(t)

	o := evaluate(t, r, "phonetic", "Nite Owl")
	require.True(t, o.IsMatched())
	assert.Contains(t, o.Predicate().SQL(), "&& q.codes")
	assert.Contains(t, o.Predicate().SQL(), "> 35")
	assert.Equal(t, []any{"Nite Owl"}, o.Predicate().Args())

	sc, ok := o.Score()
	require.True(t, ok)
	assert.Contains(t, sc.SQL(), "GREATEST(cardinality(q.codes), cardinality(h.mark_identification_soundex), 1)")

	assert.False(t, evaluate(t, r, "phonetic", "").IsMatched())
	assert.False(t, evaluate(t, r, "phonetic", "1234 ##").IsMatched())
}

func TestParseDateRange(t *testing.T) {
	d := func(s string) time.Time {
		v, err := time.Parse(dateLayout, s)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name     string
		in       string
		from, to string
		wantErr  bool
	}{
		{"dash separated", "2020-01-01 - 2020-12-31", "2020-01-01", "2020-12-31", false},
		{"comma separated", "2020-01-01,2020-12-31", "2020-01-01", "2020-12-31", false},
		{"single day", "2021-06-15", "2021-06-15", "2021-06-15", false},
		{"padded", "  2020-01-01 - 2020-01-02 ", "2020-01-01", "2020-01-02", false},
		{"empty", "", "", "", true},
		{"garbage", "last year", "", "", true},
		{"bad end", "2020-01-01 - 2020-13-01", "", "", true},
		{"reversed", "2020-12-31 - 2020-01-01", "", "", true},
		{"us format", "01/01/2020 - 12/31/2020", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := ParseDateRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d(tt.from), from)
			assert.Equal(t, d(tt.to), to)
		})
	}
}

func TestDateRange(t *testing.T) {
	r := newBuiltin(t)

	o := evaluate(t, r, "filing_date", "2020-01-01 - 2020-12-31")
	require.True(t, o.IsMatched())
	assert.Equal(t, "SELECT x.serial_number FROM casefileheader x WHERE x.filing_date BETWEEN ? AND ?",
		o.Predicate().SQL())
	assert.Len(t, o.Predicate().Args(), 2)

	o = evaluate(t, r, "priority_date_range", "2020-01-01 - 2020-12-31")
	assert.Contains(t, o.Predicate().SQL(), "x.foreign_priority_claim_in IS TRUE AND x.foreign_filing_date BETWEEN")

	assert.False(t, evaluate(t, r, "registration_date", "not a date").IsMatched())
}

func TestExact(t *testing.T) {
	r := newBuiltin(t)

	tests := []struct {
		name     string
		strategy string
		query    string
		matched  bool
		arg      any
	}{
		{"serial", "serial_number", " 78787878 ", true, int64(78787878)},
		{"serial non numeric", "serial_number", "78-78", false, nil},
		{"serial out of integer range", "serial_number", "99999999999", false, nil},
		{"serial negative out of range", "serial_number", "-2147483649", false, nil},
		{"serial int32 max", "serial_number", "2147483647", true, int64(2147483647)},
		{"registration", "registration_number", "1234567", true, "1234567"},
		{"intl class padded", "international_class", "25", true, "025"},
		{"intl class exact", "international_class", "025", true, "025"},
		{"intl class too long", "international_class", "0255", false, nil},
		{"us class letter", "us_class", "a", true, "A"},
		{"design code", "design_code", "260101", true, int64(260101)},
		{"design code bad", "design_code", "26.01.01", false, nil},
		{"legal entity", "owner_legal_entity", "03", true, int64(3)},
		{"legal entity wrong length", "owner_legal_entity", "3", false, nil},
		{"legal entity non numeric", "owner_legal_entity", "ab", false, nil},
		{"design code out of range", "design_code", "99999999999", false, nil},
		{"party type", "owner_party_type", "10", true, int64(10)},
		{"party type out of range", "owner_party_type", "99999999999", false, nil},
		{"status code out of range", "international_status_code", "99999999999", false, nil},
		{"intl registration bigint", "int_reg_number", "99999999999", true, int64(99999999999)},
		{"drawing type", "drawing_code_type", "4", true, "4"},
		{"drawing type out of range", "drawing_code_type", "7", false, nil},
		{"empty", "int_reg_number", "", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := evaluate(t, r, tt.strategy, tt.query)
			require.Equal(t, tt.matched, o.IsMatched(), o.Reason())
			if !tt.matched {
				assert.NotEmpty(t, o.Reason())
				return
			}
			assert.Equal(t, []any{tt.arg}, o.Predicate().Args())
		})
	}
}

func TestCoordinated(t *testing.T) {
	r := newBuiltin(t)

	o := evaluate(t, r, "coordinated_class", " COORD_CLASS_001 ")
	require.True(t, o.IsMatched())
	p := o.Predicate()
	assert.Contains(t, p.SQL(), "INTERSECT")
	require.Len(t, p.Args(), 2)
	assert.Equal(t, []string{"005", "017", "035", "042", "044"}, p.Args()[0])
	assert.Equal(t, []string{"A", "B", "200"}, p.Args()[1])

	o = evaluate(t, r, "coordinated_class", "coord_class_999")
	assert.False(t, o.IsMatched())
}

func TestParseClasses(t *testing.T) {
	c, err := DefaultClasses()
	require.NoError(t, err)
	assert.Len(t, c, 45)
	assert.Equal(t, "coord_class_001", c.Keys()[0])

	_, err = ParseClasses([]byte("bad:\n  international: [\"001\"]\n"))
	assert.Error(t, err)

	_, err = ParseClasses([]byte("[unclosed"))
	assert.Error(t, err)
}
