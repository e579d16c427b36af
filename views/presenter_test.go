package views

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"ecommerce-dashboard/model"
	"ecommerce-dashboard/pkg/chart"
	"ecommerce-dashboard/pkg/dataset"
	"ecommerce-dashboard/services/dashboard_service"

	"github.com/PuerkitoBio/goquery"
)

const sampleCSV = "order_id,order_item_id,product_id,seller_id,customer_id,customer_state,order_approved_at,price,review_id,review_score\n" +
	"O1,1,P1,S1,C1,SP,2024-01-01 10:00:00,10.00,R1,5\n" +
	"O1,2,P1,S2,C1,SP,2024-01-01 10:00:00,5.00,no_review,no_review\n" +
	"O2,1,P2,S1,C2,RJ,2024-01-02 09:00:00,20.00,R2,3\n"

func newTestDashboard(t *testing.T) *dashboard_service.Dashboard {
	t.Helper()
	lines, _, err := dataset.Load(strings.NewReader(sampleCSV), dataset.Options{})
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	return dashboard_service.NewDashboard(lines)
}

func testPresenter() Presenter {
	return Presenter{
		Title:          "E-Commerce Public Dashboard",
		Caption:        "Copyright (c) Dashboard",
		CurrencyPrefix: "AUD ",
		Locale:         "en",
		SidebarURL:     "/static/sidebar",
	}
}

func renderPage(t *testing.T, p Presenter, d *dashboard_service.Dashboard, r dashboard_service.DateRange) *goquery.Document {
	t.Helper()
	view, err := p.Page(d.Build(r), d.DefaultRange())
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, view); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func metricValues(doc *goquery.Document) map[string]string {
	values := make(map[string]string)
	doc.Find(".metric").Each(func(_ int, s *goquery.Selection) {
		values[strings.TrimSpace(s.Find(".label").Text())] = strings.TrimSpace(s.Find(".value").Text())
	})
	return values
}

func TestRenderPageMetrics(t *testing.T) {
	t.Parallel()

	d := newTestDashboard(t)
	doc := renderPage(t, testPresenter(), d, d.DefaultRange())

	metrics := metricValues(doc)
	want := map[string]string{
		"Total orders":           "2",
		"Total Revenue":          "AUD 35.00",
		"Average Recency (days)": "0.5",
		"Average Frequency":      "1.00",
		"Average Monetary":       "AUD 17.50",
	}
	for label, value := range want {
		if metrics[label] != value {
			t.Errorf("%s = %q, want %q", label, metrics[label], value)
		}
	}

	if got := doc.Find("#range").Text(); got != "2024-01-01 ~ 2024-01-03" {
		t.Errorf("range = %q", got)
	}
	if got := doc.Find("#lines").Text(); got != "3" {
		t.Errorf("lines = %q", got)
	}
}

func TestRenderPageCharts(t *testing.T) {
	t.Parallel()

	d := newTestDashboard(t)
	doc := renderPage(t, testPresenter(), d, d.DefaultRange())

	for _, name := range ChartNames {
		fig := doc.Find("#chart-" + name)
		if fig.Length() != 1 {
			t.Fatalf("chart %s missing", name)
		}
		if fig.Find("svg").Length() != 1 {
			t.Errorf("chart %s has no inline svg", name)
		}
	}
	if strings.Contains(doc.Find("main").Text(), "<?xml") {
		t.Error("xml declaration leaked into the page")
	}
	if doc.Find("section").Length() != 5 {
		t.Errorf("expected 5 sections, got %d", doc.Find("section").Length())
	}
	if doc.Find(".cols-2 figure").Length() != 2 {
		t.Error("product charts should be side by side")
	}
}

func TestRenderPageForm(t *testing.T) {
	t.Parallel()

	d := newTestDashboard(t)
	doc := renderPage(t, testPresenter(), d, d.DefaultRange())

	start := doc.Find("input#start")
	if v, _ := start.Attr("value"); v != "2024-01-01" {
		t.Errorf("start value = %q", v)
	}
	if v, _ := start.Attr("min"); v != "2024-01-01" {
		t.Errorf("start min = %q", v)
	}
	if v, _ := doc.Find("input#end").Attr("max"); v != "2024-01-03" {
		t.Errorf("end max = %q", v)
	}
	if src, _ := doc.Find("#sidebar-image").Attr("src"); src != "/static/sidebar" {
		t.Errorf("sidebar src = %q", src)
	}
	if doc.Find("footer").Text() != "Copyright (c) Dashboard" {
		t.Errorf("caption = %q", doc.Find("footer").Text())
	}
}

func TestRenderPageEmptyRange(t *testing.T) {
	t.Parallel()

	d := newTestDashboard(t)
	r, err := d.ParseRange("2030-01-01", "2030-01-31")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	doc := renderPage(t, testPresenter(), d, r)

	metrics := metricValues(doc)
	if metrics["Total orders"] != "0" {
		t.Errorf("total orders = %q", metrics["Total orders"])
	}
	for _, label := range []string{"Average Recency (days)", "Average Frequency", "Average Monetary"} {
		if metrics[label] != "N/A" {
			t.Errorf("%s = %q, want N/A", label, metrics[label])
		}
	}
	if n := strings.Count(doc.Find("main").Text(), "No data"); n != len(ChartNames) {
		t.Errorf("expected %d empty-state charts, got %d", len(ChartNames), n)
	}
}

func TestRenderPageWithoutSidebar(t *testing.T) {
	t.Parallel()

	p := testPresenter()
	p.SidebarURL = ""
	p.Caption = ""
	d := newTestDashboard(t)
	doc := renderPage(t, p, d, d.DefaultRange())

	if doc.Find("#sidebar-image").Length() != 0 {
		t.Error("sidebar image should be omitted")
	}
	if doc.Find("footer").Length() != 0 {
		t.Error("footer should be omitted without caption")
	}
}

func TestChartUnknown(t *testing.T) {
	t.Parallel()

	d := newTestDashboard(t)
	_, err := testPresenter().Chart("pie", d.Build(d.DefaultRange()))
	if !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("expected ErrUnknownChart, got %v", err)
	}
}

func TestChartHighlightsFirstBar(t *testing.T) {
	t.Parallel()

	d := newTestDashboard(t)
	out, err := testPresenter().Chart(ChartProductReviews, d.Build(d.DefaultRange()))
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	svg := string(out)
	if strings.Count(svg, "fill:#450557") != 1 || strings.Count(svg, "fill:#7f7f7f") != 1 {
		t.Errorf("expected one highlighted and one muted bar:\n%s", svg)
	}
	if !strings.Contains(svg, ">P1<") || !strings.Contains(svg, ">P2<") {
		t.Error("product labels missing")
	}
}

func TestRFMMetricsRounding(t *testing.T) {
	t.Parallel()

	report := &dashboard_service.Report{
		RFMSummary: dashboard_service.RFMSummary{Customers: 3, AvgRecency: 4.26, AvgFrequency: 1.333},
	}
	metrics := testPresenter().RFMMetrics(report)
	if metrics[0].Value != "4.3" || metrics[1].Value != "1.33" || metrics[2].Value != "AUD 0.00" {
		t.Errorf("unexpected metrics %+v", metrics)
	}
}

var rectHeight = regexp.MustCompile(`<rect x="-?\d+" y="-?\d+" width="\d+" height="(\d+)" style="fill:(#[0-9a-f]{6})"`)

func TestStateChartSingleStateBarIsVisible(t *testing.T) {
	t.Parallel()

	report := &dashboard_service.Report{
		CustomersByState: []model.StateCustomers{{State: "SP", CustomerCount: 3}},
	}
	out, err := testPresenter().Chart(ChartCustomerStates, report)
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}

	var bars int
	for _, m := range rectHeight.FindAllStringSubmatch(string(out), -1) {
		if m[2] != chart.Viridis[0] {
			continue
		}
		bars++
		if h, _ := strconv.Atoi(m[1]); h < 12 {
			t.Errorf("bar height = %d, too thin to see", h)
		}
	}
	if bars != 1 {
		t.Fatalf("expected one state bar, got %d:\n%s", bars, out)
	}
}

func TestStateChartHeightGrowsWithStates(t *testing.T) {
	t.Parallel()

	if stateChartHeight(0) != stateChartHeight(3) {
		t.Error("small charts should share the minimum height")
	}
	if stateChartHeight(27) <= stateChartHeight(3) {
		t.Error("height should grow with the number of states")
	}
}
