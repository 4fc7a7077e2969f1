package dataprocessing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdillahiomardjamaainan/EDA-Project/pkg/contracts/domain"
)

func TestConvertListLikeColumns(t *testing.T) {
	native := domain.Sequence(domain.String("a"))
	in := mustTable(t,
		rawColumn("tags", domain.String("['a', 'b']"), domain.String("oops"), domain.Absent(), native),
		rawColumn("other", strs("x", "y", "z", "w")...),
	)

	out, stats := convertListLikeColumns(in, []string{"tags", "missing"})

	col, ok := out.Column("tags")
	require.True(t, ok)
	assert.Equal(t, domain.ColumnList, col.Type)
	assert.True(t, col.Values[0].Equal(domain.Sequence(domain.String("a"), domain.String("b"))))
	assert.True(t, col.Values[1].IsAbsent())
	assert.True(t, col.Values[2].IsAbsent())
	assert.True(t, col.Values[3].Equal(native))

	assert.Equal(t, 1, stats.DegradedCells)
	assert.Equal(t, []string{"missing"}, stats.MissingColumns)

	orig, _ := in.Column("tags")
	assert.Equal(t, domain.ColumnRaw, orig.Type, "input must not be modified")

	again := ConvertListLikeColumns(out, []string{"tags", "missing"})
	assert.True(t, out.Equal(again), "list conversion is idempotent")
}

func TestSplitNutritionColumns(t *testing.T) {
	in := mustTable(t,
		rawColumn("id", strs("1", "2", "3", "4", "5", "6")...),
		rawColumn("nutrition",
			domain.String("[51.5, 0, 13, 0, 2, 0, 3]"),
			domain.String("[1, 2, 3, 4, 5]"),
			domain.String("[1, 2, 3, 4, 5, 6, 7, 8, 9]"),
			domain.String("garbage"),
			domain.String("['x', '2.5', 3]"),
			domain.String("[True, False, None, 1, 1, 1, 1]")),
	)

	out, err := SplitNutritionColumns(in, DefaultSplitOptions())
	require.NoError(t, err)

	assert.Equal(t, in.NumRows(), out.NumRows())
	assert.Equal(t, append([]string{"id", "nutrition"}, domain.NutritionColumns()...), out.ColumnNames())

	value := func(col string, row int) domain.Value {
		v, ok := out.Value(col, row)
		require.True(t, ok)
		return v
	}

	t.Run("complete vector", func(t *testing.T) {
		want := []float64{51.5, 0, 13, 0, 2, 0, 3}
		for j, name := range domain.NutritionColumns() {
			f, ok := value(name, 0).Float64()
			require.True(t, ok, name)
			assert.Equal(t, want[j], f, name)
			assert.Equal(t, domain.KindFloat, value(name, 0).Kind(), "ints are widened to float")
		}
	})

	t.Run("short vector is padded with absent", func(t *testing.T) {
		f, _ := value(domain.NutritionProtein, 1).Float64()
		assert.Equal(t, 5.0, f)
		assert.True(t, value(domain.NutritionSaturatedFat, 1).IsAbsent())
		assert.True(t, value(domain.NutritionCarbohydrates, 1).IsAbsent())
	})

	t.Run("long vector is truncated", func(t *testing.T) {
		f, _ := value(domain.NutritionCarbohydrates, 2).Float64()
		assert.Equal(t, 7.0, f)
	})

	t.Run("non-list yields all absent", func(t *testing.T) {
		for _, name := range domain.NutritionColumns() {
			assert.True(t, value(name, 3).IsAbsent(), name)
		}
	})

	t.Run("numeric strings are accepted", func(t *testing.T) {
		assert.True(t, value(domain.NutritionCalories, 4).IsAbsent())
		f, _ := value(domain.NutritionTotalFat, 4).Float64()
		assert.Equal(t, 2.5, f)
		f, _ = value(domain.NutritionSugar, 4).Float64()
		assert.Equal(t, 3.0, f)
	})

	t.Run("booleans count as one and zero", func(t *testing.T) {
		f, ok := value(domain.NutritionCalories, 5).Float64()
		require.True(t, ok)
		assert.Equal(t, 1.0, f)
		f, ok = value(domain.NutritionTotalFat, 5).Float64()
		require.True(t, ok)
		assert.Equal(t, 0.0, f)
		assert.True(t, value(domain.NutritionSugar, 5).IsAbsent())
	})

	col, _ := out.Column(domain.NutritionCalories)
	assert.Equal(t, domain.ColumnFloat, col.Type)
}

func TestSplitNutritionColumns_Collision(t *testing.T) {
	in := mustTable(t,
		rawColumn("nutrition", domain.String("[1, 2, 3, 4, 5, 6, 7]")),
		rawColumn("calories", domain.Float(1)),
	)

	out, err := SplitNutritionColumns(in, DefaultSplitOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNameCollision))

	var collision *NameCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, []string{"calories"}, collision.Names)
	assert.Contains(t, err.Error(), "calories")
	assert.True(t, in.Equal(out))
}

func TestSplitNutritionColumns_DropOriginal(t *testing.T) {
	in := mustTable(t, rawColumn("nutrition", domain.String("[1, 2, 3, 4, 5, 6, 7]")))

	opts := DefaultSplitOptions()
	opts.DropOriginal = true
	out, err := SplitNutritionColumns(in, opts)
	require.NoError(t, err)

	assert.False(t, out.HasColumn("nutrition"))
	assert.Equal(t, domain.NutritionColumns(), out.ColumnNames())
}

func TestSplitNutritionColumns_CustomOutputs(t *testing.T) {
	in := mustTable(t, rawColumn("packed", domain.String("[1, 2, 3]")))

	out, err := SplitNutritionColumns(in, SplitOptions{Source: "packed", Outputs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"packed", "a", "b"}, out.ColumnNames())

	v, _ := out.Value("b", 0)
	f, _ := v.Float64()
	assert.Equal(t, 2.0, f)
}

func TestMissingSourceColumn(t *testing.T) {
	in := mustTable(t, rawColumn("name", strs("a", "b")...))

	split, err := SplitNutritionColumns(in, DefaultSplitOptions())
	require.NoError(t, err)
	assert.True(t, in.Equal(split))

	temporal := ConvertTemporalColumns(in, DefaultTemporalOptions())
	assert.True(t, in.Equal(temporal))

	category := ConvertToCategory(in, "contributor_id")
	assert.True(t, in.Equal(category))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2020-01-15", time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2005-09-16 13:45:00", time.Date(2005, 9, 16, 13, 45, 0, 0, time.UTC), true},
		{"2005-09-16T13:45:00", time.Date(2005, 9, 16, 13, 45, 0, 0, time.UTC), true},
		{"2005-09-16T13:45:00Z", time.Date(2005, 9, 16, 13, 45, 0, 0, time.UTC), true},
		{"2005/09/16", time.Date(2005, 9, 16, 0, 0, 0, 0, time.UTC), true},
		{"09/16/2005", time.Date(2005, 9, 16, 0, 0, 0, 0, time.UTC), true},
		{" 2020-01-15 ", time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"2019-02-30", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestConvertTemporalColumns(t *testing.T) {
	in := mustTable(t,
		rawColumn("submitted", domain.String("2020-01-15"), domain.String("2019-02-30"), domain.Absent()),
	)

	t.Run("default parts", func(t *testing.T) {
		out, stats := convertTemporalColumns(in, DefaultTemporalOptions())
		assert.Equal(t, []string{"submitted", "year", "month"}, out.ColumnNames())
		assert.Equal(t, []string{"year", "month"}, stats.ColumnsAdded)
		assert.Equal(t, 1, stats.DegradedCells)

		sub, _ := out.Column("submitted")
		assert.Equal(t, domain.ColumnTimestamp, sub.Type)
		assert.True(t, sub.Values[1].IsAbsent(), "invalid calendar date is absent")
		assert.True(t, sub.Values[2].IsAbsent())

		year, _ := out.Value("year", 0)
		month, _ := out.Value("month", 0)
		assert.True(t, year.Equal(domain.Int(2020)))
		assert.True(t, month.Equal(domain.Int(1)))

		missingYear, _ := out.Value("year", 1)
		assert.True(t, missingYear.IsAbsent())
	})

	t.Run("all parts in request order", func(t *testing.T) {
		opts := TemporalOptions{
			Source:   "submitted",
			AddParts: true,
			Parts:    []string{PartDayOfWeek, PartDay, "quarter", PartDay, PartYear},
		}
		out := ConvertTemporalColumns(in, opts)
		assert.Equal(t, []string{"submitted", "dayofweek", "day", "year"}, out.ColumnNames())

		dow, _ := out.Value("dayofweek", 0)
		day, _ := out.Value("day", 0)
		assert.True(t, dow.Equal(domain.Int(2)), "2020-01-15 is a Wednesday, Monday is 0")
		assert.True(t, day.Equal(domain.Int(15)))
	})

	t.Run("parts disabled", func(t *testing.T) {
		out := ConvertTemporalColumns(in, TemporalOptions{Source: "submitted", Parts: []string{PartYear}})
		assert.Equal(t, []string{"submitted"}, out.ColumnNames())
	})

	t.Run("existing part column replaced in place", func(t *testing.T) {
		withYear := mustTable(t,
			rawColumn("year", strs("a", "b", "c")...),
			rawColumn("submitted", domain.String("2020-01-15"), domain.Absent(), domain.Absent()),
		)
		out, stats := convertTemporalColumns(withYear, TemporalOptions{Source: "submitted", AddParts: true, Parts: []string{PartYear}})
		assert.Equal(t, []string{"year", "submitted"}, out.ColumnNames())
		assert.Empty(t, stats.ColumnsAdded)

		year, _ := out.Value("year", 0)
		assert.True(t, year.Equal(domain.Int(2020)))
	})

	t.Run("timestamps kept on rerun", func(t *testing.T) {
		once := ConvertTemporalColumns(in, DefaultTemporalOptions())
		twice := ConvertTemporalColumns(once, DefaultTemporalOptions())
		assert.True(t, once.Equal(twice))
	})
}

func TestConvertToCategory(t *testing.T) {
	in := mustTable(t, rawColumn("contributor_id", strs("47892", "26278", "47892")...))

	out := ConvertToCategory(in, "contributor_id")

	col, ok := out.Column("contributor_id")
	require.True(t, ok)
	assert.Equal(t, domain.ColumnCategorical, col.Type)

	orig, _ := in.Column("contributor_id")
	assert.Equal(t, orig.Distinct(), col.Distinct(), "distinct values are unchanged")
	require.Len(t, col.Categories, 2)
	assert.True(t, col.Categories[0].Equal(domain.String("26278")))
	assert.True(t, col.Categories[1].Equal(domain.String("47892")))
	for i := range orig.Values {
		assert.True(t, orig.Values[i].Equal(col.Values[i]))
	}
}
