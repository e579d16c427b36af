package views

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"ecommerce-dashboard/services/dashboard_service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Metric 指标卡片
type Metric struct {
	Label string
	Value string
}

// ChartView 页面内嵌的一张图表
type ChartView struct {
	Name  string
	Title string
	SVG   template.HTML
}

// Section 页面中的一个分区
type Section struct {
	Title   string
	Metrics []Metric
	Charts  []ChartView
	Columns int
}

// RangeForm 日期选择器的状态
type RangeForm struct {
	Start   string
	End     string
	MinDate string
	MaxDate string
}

// PageView 渲染整页所需的数据
type PageView struct {
	Title      string
	Caption    string
	SidebarURL string
	Form       RangeForm
	Range      string
	Lines      int
	Error      string
	Sections   []Section
}

// Page 组装页面数据
func (p Presenter) Page(r *dashboard_service.Report, bounds dashboard_service.DateRange) (PageView, error) {
	view := PageView{
		Title:      p.Title,
		Caption:    p.Caption,
		SidebarURL: p.SidebarURL,
		Form: RangeForm{
			Start:   r.Range.Start.Format(dashboard_service.DateLayout),
			End:     r.Range.End.Format(dashboard_service.DateLayout),
			MinDate: bounds.Start.Format(dashboard_service.DateLayout),
			MaxDate: bounds.End.Format(dashboard_service.DateLayout),
		},
		Range: r.Range.String(),
		Lines: r.Lines,
	}

	charts := make(map[string]ChartView, len(ChartNames))
	for _, name := range ChartNames {
		svg, err := p.Chart(name, r)
		if err != nil {
			return PageView{}, err
		}
		charts[name] = ChartView{Name: name, Title: ChartTitle(name), SVG: inlineSVG(svg)}
	}

	view.Sections = []Section{
		{
			Title:   "Daily Orders",
			Metrics: p.HeadlineMetrics(r),
			Charts:  []ChartView{charts[ChartDailyOrders]},
			Columns: 1,
		},
		{
			Title:   "Products with the Highest Review Score and Sales",
			Charts:  []ChartView{charts[ChartProductReviews], charts[ChartProductSales]},
			Columns: 2,
		},
		{
			Title:   "Customer Demographics",
			Charts:  []ChartView{charts[ChartCustomerStates]},
			Columns: 1,
		},
		{
			Title:   "Sellers with the Highest Review Score",
			Charts:  []ChartView{charts[ChartSellerReviews]},
			Columns: 1,
		},
		{
			Title:   "Best Customers Based on RFM Parameters",
			Metrics: p.RFMMetrics(r),
			Charts:  []ChartView{charts[ChartRFMRecency], charts[ChartRFMFrequency], charts[ChartRFMMonetary]},
			Columns: 3,
		},
	}
	return view, nil
}

// Render 输出 HTML 页面
func Render(w io.Writer, view PageView) error {
	return pageTemplate.Execute(w, view)
}

// inlineSVG 去掉 XML 声明，只保留 <svg> 元素以便内嵌到 HTML
func inlineSVG(doc []byte) template.HTML {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		doc = doc[i:]
	}
	return template.HTML(doc)
}
