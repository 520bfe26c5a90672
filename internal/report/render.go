package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle  = color.New(color.FgCyan, color.OpBold)
	headerStyle = color.New(color.OpBold)
)

// Render writes the summary as aligned tables. Colors are used only when
// colored is true.
func (s *Summary) Render(w io.Writer, colored bool) error {
	r := &renderer{w: w, colored: colored}

	r.title("Resumo")
	r.table([]string{"Métrica", "Valor"}, [][]string{
		{"Registros", strconv.Itoa(s.Records)},
		{"Processos", strconv.Itoa(s.Processes)},
	})

	r.countTable("Movimentos por Tipo", "movement_type", s.MovementTypes)
	r.countTable("Movimentos por Complexidade", "complexity", s.Complexities)
	r.countTable("Movimentos por Detalhe", "movement_detail", s.MovementDetails)
	r.countTable("Movimentos por Grupo", "activity_group", s.Groups)

	r.durationTable("Duração por Tipo (segundos)", "movement_type", s.DurationsByType)
	r.durationTable("Duração por Grupo (segundos)", "activity_group", s.DurationsByGroup)

	if len(s.Histogram) > 0 {
		r.title("Histograma de Duração (segundos)")
		rows := make([][]string, 0, len(s.Histogram))
		for _, b := range s.Histogram {
			rows = append(rows, []string{
				fmt.Sprintf("[%s, %s)", seconds(b.Lower), seconds(b.Upper)),
				strconv.Itoa(b.Count),
			})
		}
		r.table([]string{"Faixa", "Qtd"}, rows)
	}

	return r.err
}

type renderer struct {
	w       io.Writer
	colored bool
	err     error
}

func (r *renderer) printf(format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) style(st color.Style, s string) string {
	if !r.colored {
		return s
	}
	return st.Sprint(s)
}

func (r *renderer) title(s string) {
	r.printf("\n%s\n", r.style(titleStyle, s))
}

func (r *renderer) countTable(title, column string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	r.title(title)
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count), fmt.Sprintf("%.1f%%", c.Percent)})
	}
	r.table([]string{column, "Qtd", "%"}, rows)
}

func (r *renderer) durationTable(title, column string, stats []DurationStats) {
	if len(stats) == 0 {
		return
	}
	r.title(title)
	rows := make([][]string, 0, len(stats))
	for _, d := range stats {
		rows = append(rows, []string{
			d.Label,
			strconv.Itoa(d.Count),
			seconds(d.Mean),
			seconds(d.Median),
			seconds(d.P90),
			seconds(d.StdDev),
		})
	}
	r.table([]string{column, "Qtd", "Média", "Mediana", "P90", "Desvio"}, rows)
}

// table pads cells by display width so accented and wide labels line up.
func (r *renderer) table(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	r.printf("%s\n", r.style(headerStyle, formatRow(header, widths)))
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	r.printf("%s\n", formatRow(sep, widths))
	for _, row := range rows {
		r.printf("%s\n", formatRow(row, widths))
	}
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		if i == 0 {
			padded[i] = runewidth.FillRight(cell, widths[i])
		} else {
			padded[i] = runewidth.FillLeft(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
