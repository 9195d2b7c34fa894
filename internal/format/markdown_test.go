package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableToMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		table string
		raw   string
		want  string
	}{
		{
			name:  "single object keeps key order",
			table: "Account_Info",
			raw:   `{"name":"KB4-Demo","type":"paid","domains":["kb4-demo.com"],"admins":[{"id":974278,"first_name":"Grace"}],"current_risk_score":45.742}`,
			want: "### Account_Info\n" +
				"|name|type|domains|admins|current_risk_score|\n" +
				"|---|---|---|---|---|\n" +
				`| KB4-Demo | paid | ["kb4-demo.com"] | [{"id":974278,"first_name":"Grace"}] | 45.742 |` + "\n",
		},
		{
			name:  "array of objects unions headers in first-seen order",
			table: "Account_Risk_Score_History",
			raw:   `[{"risk_score":42.459,"date":"2021-02-22"},{"risk_score":42.42,"date":"2021-02-23","note":null}]`,
			want: "### Account_Risk_Score_History\n" +
				"|risk_score|date|note|\n" +
				"|---|---|---|\n" +
				"| 42.459 | 2021-02-22 |  |\n" +
				"| 42.42 | 2021-02-23 |  |\n",
		},
		{
			name:  "events page renders as one row with nested data",
			table: "KMSAT_User_Events",
			raw:   `{"data":[],"meta":{"count":0,"pages":0}}`,
			want: "### KMSAT_User_Events\n" +
				"|data|meta|\n" +
				"|---|---|\n" +
				`| [] | {"count":0,"pages":0} |` + "\n",
		},
		{
			name:  "pipes and newlines are escaped",
			table: "T",
			raw:   `{"desc":"a|b\nc","ok":true}`,
			want:  "### T\n|desc|ok|\n|---|---|\n| a\\|b<br>c | true |\n",
		},
		{
			name:  "empty object",
			table: "T",
			raw:   `{}`,
			want:  "### T\n**No entries.**\n",
		},
		{
			name:  "empty array",
			table: "T",
			raw:   `[]`,
			want:  "### T\n**No entries.**\n",
		},
		{
			name:  "null",
			table: "T",
			raw:   `null`,
			want:  "### T\n**No entries.**\n",
		},
		{
			name:  "array of scalars",
			table: "Domains",
			raw:   `["a.com","b.com"]`,
			want:  "### Domains\n|Domains|\n|---|\n| a.com |\n| b.com |\n",
		},
		{
			name:  "objects and scalars share the table",
			table: "T",
			raw:   `[{"a":1},"kept",2,{"a":3,"b":"x"}]`,
			want: "### T\n" +
				"|a|b|T|\n" +
				"|---|---|---|\n" +
				"| 1 |  |  |\n" +
				"|  |  | kept |\n" +
				"|  |  | 2 |\n" +
				"| 3 | x |  |\n",
		},
		{
			name:  "array of empty objects",
			table: "T",
			raw:   `[{},{}]`,
			want:  "### T\n**No entries.**\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TableToMarkdown(tt.table, []byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableToMarkdown_InvalidJSON(t *testing.T) {
	for _, raw := range []string{``, `{"a":`, `{"a":1} trailing`} {
		_, err := TableToMarkdown("T", []byte(raw))
		assert.Error(t, err, "input %q", raw)
	}
}
