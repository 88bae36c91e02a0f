package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/teranos/ASE/transport"
)

// aliasSanitizePattern collapses any run of characters outside [a-z0-9]
// into a single underscore. Applied to generated aliases only; referenced
// column names are never mangled.
var aliasSanitizePattern = regexp.MustCompile(`[^a-z0-9]+`)

func sanitizeAlias(column string) string {
	alias := aliasSanitizePattern.ReplaceAllString(strings.ToLower(column), "_")
	return strings.Trim(alias, "_")
}

// quoteIdent double-quotes an identifier for use in generated SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// GenerateTemplates derives a battery of ready-to-run analytic statements
// from live column metadata. Emission is deterministic: the same table name
// and column list always yield byte-identical templates in the same order.
//
// Which templates appear depends on what the dataset offers: grouping needs
// a categorical column, the statistical battery needs numerics, correlation
// needs two. Aggregates such as STDDEV and PERCENTILE_CONT follow
// continuous-percentile semantics; whether the backend supports them is the
// backend's concern, not the generator's.
func GenerateTemplates(table string, columns []transport.ColumnDescriptor) []Template {
	t := quoteIdent(table)

	var numeric, categorical []transport.ColumnDescriptor
	for _, c := range columns {
		switch c.InferredType {
		case transport.ColumnNumeric:
			numeric = append(numeric, c)
		case transport.ColumnCategorical:
			categorical = append(categorical, c)
		}
	}

	templates := []Template{
		{Name: "Basic Select", SQL: fmt.Sprintf("SELECT * FROM %s LIMIT 10", t)},
		{Name: "Count Records", SQL: fmt.Sprintf("SELECT COUNT(*) AS total_records FROM %s", t)},
		{Name: "Data Quality Check", SQL: dataQualitySQL(t, columns)},
		{Name: "Schema Info", SQL: fmt.Sprintf("SELECT name, type FROM pragma_table_info('%s')", strings.ReplaceAll(table, "'", "''"))},
	}

	if len(categorical) > 0 {
		templates = append(templates, groupAndCountTemplate(t, categorical[0]))
	}

	if len(numeric) > 0 {
		templates = append(templates,
			statisticalSummaryTemplate(t, numeric[0]),
			outlierDetectionTemplate(t, numeric[0]),
			topRecordsTemplate(t, numeric[0]),
		)
	}

	if len(numeric) >= 2 {
		templates = append(templates, correlationTemplate(t, numeric[0], numeric[1]))
	}

	if len(categorical) > 0 && len(numeric) > 0 {
		templates = append(templates, crossTabulationTemplate(t, categorical[0], numeric[0]))
	}

	if len(columns) > 0 {
		templates = append(templates,
			dataProfilingTemplate(t, columns),
			filterAndSearchTemplate(t, columns[0]),
		)
	}

	return templates
}

// dataQualitySQL builds one null-count expression per column. With no
// columns available it degrades to a bare row count so the template is
// still runnable.
func dataQualitySQL(t string, columns []transport.ColumnDescriptor) string {
	exprs := []string{"COUNT(*) AS total_rows"}
	for _, c := range columns {
		exprs = append(exprs, fmt.Sprintf("COUNT(*) - COUNT(%s) AS %s_nulls",
			quoteIdent(c.Name), sanitizeAlias(c.Name)))
	}
	return fmt.Sprintf("SELECT\n  %s\nFROM %s", strings.Join(exprs, ",\n  "), t)
}

func groupAndCountTemplate(t string, cat transport.ColumnDescriptor) Template {
	c := quoteIdent(cat.Name)
	return Template{
		Name: "Group & Count",
		SQL: fmt.Sprintf("SELECT %s, COUNT(*) AS frequency\nFROM %s\nGROUP BY %s\nORDER BY frequency DESC\nLIMIT 20",
			c, t, c),
	}
}

func statisticalSummaryTemplate(t string, num transport.ColumnDescriptor) Template {
	n := quoteIdent(num.Name)
	return Template{
		Name: "Statistical Summary",
		SQL: fmt.Sprintf(`SELECT
  COUNT(%[1]s) AS count,
  AVG(%[1]s) AS mean,
  MIN(%[1]s) AS min,
  MAX(%[1]s) AS max,
  STDDEV(%[1]s) AS stddev,
  PERCENTILE_CONT(0.25) WITHIN GROUP (ORDER BY %[1]s) AS q1,
  PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY %[1]s) AS median,
  PERCENTILE_CONT(0.75) WITHIN GROUP (ORDER BY %[1]s) AS q3
FROM %[2]s`, n, t),
	}
}

func outlierDetectionTemplate(t string, num transport.ColumnDescriptor) Template {
	n := quoteIdent(num.Name)
	return Template{
		Name: "Outlier Detection",
		SQL: fmt.Sprintf(`WITH bounds AS (
  SELECT
    PERCENTILE_CONT(0.25) WITHIN GROUP (ORDER BY %[1]s) AS q1,
    PERCENTILE_CONT(0.75) WITHIN GROUP (ORDER BY %[1]s) AS q3
  FROM %[2]s
)
SELECT d.*
FROM %[2]s d, bounds
WHERE d.%[1]s < bounds.q1 - 1.5 * (bounds.q3 - bounds.q1)
   OR d.%[1]s > bounds.q3 + 1.5 * (bounds.q3 - bounds.q1)`, n, t),
	}
}

func topRecordsTemplate(t string, num transport.ColumnDescriptor) Template {
	return Template{
		Name: "Top Records",
		SQL:  fmt.Sprintf("SELECT * FROM %s ORDER BY %s DESC LIMIT 20", t, quoteIdent(num.Name)),
	}
}

func correlationTemplate(t string, a, b transport.ColumnDescriptor) Template {
	qa, qb := quoteIdent(a.Name), quoteIdent(b.Name)
	sa, sb := sanitizeAlias(a.Name), sanitizeAlias(b.Name)
	return Template{
		Name: "Correlation Analysis",
		SQL: fmt.Sprintf(`SELECT
  CORR(%[1]s, %[2]s) AS correlation,
  COUNT(*) AS sample_size,
  AVG(%[1]s) AS %[3]s_mean,
  STDDEV(%[1]s) AS %[3]s_stddev,
  AVG(%[2]s) AS %[4]s_mean,
  STDDEV(%[2]s) AS %[4]s_stddev
FROM %[5]s`, qa, qb, sa, sb, t),
	}
}

func crossTabulationTemplate(t string, cat, num transport.ColumnDescriptor) Template {
	c, n := quoteIdent(cat.Name), quoteIdent(num.Name)
	alias := sanitizeAlias(num.Name)
	return Template{
		Name: "Cross-Tabulation",
		SQL: fmt.Sprintf(`SELECT
  %[1]s,
  COUNT(*) AS frequency,
  AVG(%[2]s) AS %[3]s_mean,
  MIN(%[2]s) AS %[3]s_min,
  MAX(%[2]s) AS %[3]s_max,
  STDDEV(%[2]s) AS %[3]s_stddev
FROM %[4]s
GROUP BY %[1]s
ORDER BY %[3]s_mean DESC`, c, n, alias, t),
	}
}

// dataProfilingTemplate emits one SELECT per column unioned with UNION ALL,
// branching on numeric-vs-other: numerics report min/max/mean, everything
// else reports distinct count. Values are cast to TEXT so the union stays
// type-stable across branches.
func dataProfilingTemplate(t string, columns []transport.ColumnDescriptor) Template {
	selects := make([]string, 0, len(columns))
	for _, col := range columns {
		c := quoteIdent(col.Name)
		name := strings.ReplaceAll(col.Name, "'", "''")
		common := fmt.Sprintf(`'%s' AS column_name,
  COUNT(*) AS total_count,
  COUNT(%[2]s) AS non_null_count,
  COUNT(*) - COUNT(%[2]s) AS null_count,
  ROUND(100.0 * (COUNT(*) - COUNT(%[2]s)) / COUNT(*), 2) AS null_pct`, name, c)

		var branch string
		if col.InferredType == transport.ColumnNumeric {
			branch = fmt.Sprintf(`CAST(MIN(%[1]s) AS TEXT) AS min_value,
  CAST(MAX(%[1]s) AS TEXT) AS max_value,
  CAST(AVG(%[1]s) AS TEXT) AS mean_value,
  NULL AS distinct_count`, c)
		} else {
			branch = fmt.Sprintf(`NULL AS min_value,
  NULL AS max_value,
  NULL AS mean_value,
  COUNT(DISTINCT %s) AS distinct_count`, c)
		}

		selects = append(selects, fmt.Sprintf("SELECT\n  %s,\n  %s\nFROM %s", common, branch, t))
	}
	return Template{
		Name: "Data Profiling",
		SQL:  strings.Join(selects, "\nUNION ALL\n"),
	}
}

func filterAndSearchTemplate(t string, first transport.ColumnDescriptor) Template {
	return Template{
		Name: "Filter & Search",
		SQL: fmt.Sprintf("SELECT * FROM %s WHERE CAST(%s AS TEXT) LIKE '%%search_term%%' LIMIT 50",
			t, quoteIdent(first.Name)),
	}
}
