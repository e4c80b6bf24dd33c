package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/notify"
	"github.com/rubiojr/stusearch/pkg/student"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderApp(t *testing.T, s controller.State) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, App(s).Render(context.Background(), &buf))
	return buf.String()
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1 000", FormatCount(1000))
	assert.Equal(t, "1 523 440", FormatCount(1523440))
	assert.Equal(t, "-12 345", FormatCount(-12345))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "42ms", FormatLatency(42*time.Millisecond+300*time.Microsecond))
}

func TestAppPlaceholder(t *testing.T) {
	out := renderApp(t, controller.State{Status: controller.StatusUnknown, ShowPlaceholder: true})

	assert.Contains(t, out, `id="noResults"`)
	assert.NotContains(t, out, `id="resultsContainer"`)
	assert.Contains(t, out, `<span id="resultsCount" class="stat-value">0</span>`)
}

func TestAppNoResultsContainsTerm(t *testing.T) {
	out := renderApp(t, controller.State{
		LastTerm:  "Ali Valiyev",
		NoResults: true,
		Status:    controller.StatusConnected,
	})

	assert.Contains(t, out, "NO_RESULTS_FOUND")
	assert.Contains(t, out, `"Ali Valiyev" bo'yicha hech qanday natija topilmadi.`)
	assert.NotContains(t, out, `class="student-card"`)
}

func TestAppCardsInOrder(t *testing.T) {
	records := []student.Record{
		student.NewRecord(student.FieldID, "2", student.FieldName, "Bobur"),
		student.NewRecord(student.FieldName, "<b>Anvar</b>"),
	}
	total := 1523
	out := renderApp(t, controller.State{
		Cards:        student.NewCards(records),
		ResultCount:  2,
		Status:       controller.StatusConnected,
		TotalRecords: &total,
		Latency:      15 * time.Millisecond,
		HasLatency:   true,
	})

	assert.Equal(t, 2, strings.Count(out, `class="student-card"`))
	assert.Less(t, strings.Index(out, "Bobur"), strings.Index(out, "Anvar"))
	assert.Contains(t, out, `href="/students/2"`)
	assert.Contains(t, out, `href="/students/%231"`)
	assert.Contains(t, out, "ID: N/A")
	assert.Contains(t, out, "&lt;b&gt;Anvar&lt;/b&gt;")
	assert.Contains(t, out, "1 523")
	assert.Contains(t, out, "15ms")
	assert.Contains(t, out, "#00ff9d")
}

func TestAppLoadingHidesResults(t *testing.T) {
	out := renderApp(t, controller.State{
		Loading: true,
		Cards:   student.NewCards([]student.Record{student.NewRecord(student.FieldID, "1")}),
	})

	assert.Contains(t, out, `id="loadingAnimation"`)
	assert.NotContains(t, out, `class="student-card"`)
}

func TestAppDetailModal(t *testing.T) {
	rec := student.NewRecord(student.FieldID, "7", student.FieldName, "Ali", student.FieldCourse, "2")
	d := student.NewDetail(rec, "7")
	out := renderApp(t, controller.State{Detail: &d})

	assert.Contains(t, out, `id="studentModal"`)
	assert.Contains(t, out, `<h2 id="modalStudentName">Ali</h2>`)
	assert.Equal(t, len(student.Categories), strings.Count(out, `class="detail-group"`))
	assert.Contains(t, out, `href="/students/7/print"`)
	assert.Contains(t, out, `target="_blank"`)
	assert.Contains(t, out, `action="/close" class="modal-overlay"`)
	assert.NotContains(t, out, "Fakultet:")
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	n := notify.Notification{ID: "n1", Message: "Tizim tozalandi", Severity: notify.Info, Icon: notify.Info.Icon(), Color: notify.Info.Color()}
	err := Page(PageData{Version: "1.0.0", State: controller.State{
		ShowPlaceholder: true,
		Notifications:   []notify.Notification{n},
	}}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>Talabalar qidiruvi</title>")
	assert.Contains(t, out, "v1.0.0")
	assert.Contains(t, out, `data-id="n1"`)
	assert.Contains(t, out, `aria-label="Info"`)
	assert.Contains(t, out, "#00b8ff")
	assert.Contains(t, out, "/static/app.js")
}

func TestPrint(t *testing.T) {
	r := student.NewRecord("Zeta", "z", student.FieldName, "Ali", "Jins", "")
	var buf bytes.Buffer
	require.NoError(t, Print(student.NewProfile(r)).Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "<title>Ali - Talaba Profili</title>")
	assert.Contains(t, out, "Talaba Profili")
	assert.Contains(t, out, "Mavjud emas")
	assert.Contains(t, out, `class="no-print"`)
	assert.Less(t, strings.Index(out, "Zeta"), strings.Index(out, "Jins"))
}
