package dashboard

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"os"

	"ecommerce-dashboard/inout"
	"ecommerce-dashboard/middleware"
	"ecommerce-dashboard/pkg/response"
	"ecommerce-dashboard/services/dashboard_service"
	"ecommerce-dashboard/views"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// 会话中保存的日期区间
const (
	sessionStartKey = "range_start"
	sessionEndKey   = "range_end"
)

// DashboardController 看板控制器，数据集只读，多个请求并发访问无需加锁
type DashboardController struct {
	dashboard   *dashboard_service.Dashboard
	presenter   views.Presenter
	sidebarPath string
}

// NewDashboardController 创建看板控制器
func NewDashboardController(d *dashboard_service.Dashboard, p views.Presenter, sidebarPath string) *DashboardController {
	return &DashboardController{dashboard: d, presenter: p, sidebarPath: sidebarPath}
}

// Page 看板页面，记住用户上次选择的区间
func (ctl *DashboardController) Page(c *gin.Context) {
	status := http.StatusOK
	r := ctl.dashboard.DefaultRange()
	var pageErr string

	var req inout.DashboardReq
	if err := c.ShouldBindQuery(&req); err != nil {
		status, pageErr = http.StatusBadRequest, middleware.ValidationMessage(err)
	} else {
		parsed, err := ctl.sessionRange(c, req)
		if err != nil {
			status, pageErr = http.StatusBadRequest, err.Error()
		} else {
			r = parsed
		}
	}

	view, err := ctl.presenter.Page(ctl.dashboard.Build(r), ctl.dashboard.DefaultRange())
	if err != nil {
		_ = c.Error(err)
		return
	}
	view.Error = pageErr

	var buf bytes.Buffer
	if err := views.Render(&buf, view); err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// sessionRange 请求中带日期时保存到会话；没带时读取会话；reset 清除会话
func (ctl *DashboardController) sessionRange(c *gin.Context, req inout.DashboardReq) (dashboard_service.DateRange, error) {
	session := sessions.Default(c)

	if req.Reset {
		session.Delete(sessionStartKey)
		session.Delete(sessionEndKey)
		saveSession(session)
		return ctl.dashboard.DefaultRange(), nil
	}

	if req.Start == "" && req.End == "" {
		start, _ := session.Get(sessionStartKey).(string)
		end, _ := session.Get(sessionEndKey).(string)
		r, err := ctl.dashboard.ParseRange(start, end)
		if err != nil {
			// 会话里的值已失效
			session.Clear()
			saveSession(session)
			return ctl.dashboard.DefaultRange(), nil
		}
		return r, nil
	}

	r, err := ctl.dashboard.ParseRange(req.Start, req.End)
	if err != nil {
		return dashboard_service.DateRange{}, err
	}
	session.Set(sessionStartKey, req.Start)
	session.Set(sessionEndKey, req.End)
	saveSession(session)
	return r, nil
}

func saveSession(session sessions.Session) {
	if err := session.Save(); err != nil {
		log.Printf("⚠️ 保存会话失败: %v", err)
	}
}

// queryRange 解析 JSON 接口的查询参数
func (ctl *DashboardController) queryRange(c *gin.Context) (inout.DashboardReq, dashboard_service.DateRange, bool) {
	var req inout.DashboardReq
	if !middleware.BindQuery(c, &req) {
		return req, dashboard_service.DateRange{}, false
	}

	r, err := ctl.dashboard.ParseRange(req.Start, req.End)
	if err != nil {
		response.BadRequest(c, err.Error())
		return req, dashboard_service.DateRange{}, false
	}
	return req, r, true
}

// Report 全部看板数据
func (ctl *DashboardController) Report(c *gin.Context) {
	_, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	response.Success(c, ctl.dashboard.Build(r))
}

// DailyOrders 每日订单数与营收
func (ctl *DashboardController) DailyOrders(c *gin.Context) {
	req, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	items := dashboard_service.DailyOrdersOf(ctl.dashboard.Filter(r))
	response.Success(c, inout.NewTableRes(r, items, req.Limit))
}

// ProductReviews 商品评分排行
func (ctl *DashboardController) ProductReviews(c *gin.Context) {
	req, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	items := dashboard_service.ProductReviewRanking(ctl.dashboard.Filter(r))
	response.Success(c, inout.NewTableRes(r, items, req.Limit))
}

// ProductSales 商品销量排行
func (ctl *DashboardController) ProductSales(c *gin.Context) {
	req, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	items := dashboard_service.ProductSalesRanking(ctl.dashboard.Filter(r))
	response.Success(c, inout.NewTableRes(r, items, req.Limit))
}

// CustomerStates 各州客户数
func (ctl *DashboardController) CustomerStates(c *gin.Context) {
	req, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	items := dashboard_service.CustomersByState(ctl.dashboard.Filter(r))
	response.Success(c, inout.NewTableRes(r, items, req.Limit))
}

// SellerReviews 卖家评分排行
func (ctl *DashboardController) SellerReviews(c *gin.Context) {
	req, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	items := dashboard_service.SellerReviewRanking(ctl.dashboard.Filter(r))
	response.Success(c, inout.NewTableRes(r, items, req.Limit))
}

// CustomerRFM 客户 RFM
func (ctl *DashboardController) CustomerRFM(c *gin.Context) {
	req, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}
	items := dashboard_service.RFMOf(ctl.dashboard.Filter(r))
	response.Success(c, inout.NewTableRes(r, items, req.Limit))
}

// Chart 单张 SVG 图表
func (ctl *DashboardController) Chart(c *gin.Context) {
	var uri inout.ChartReq
	if !middleware.BindURI(c, &uri) {
		return
	}
	if views.ChartTitle(uri.Name) == "" {
		response.NotFound(c, "unknown chart: "+uri.Name)
		return
	}
	_, r, ok := ctl.queryRange(c)
	if !ok {
		return
	}

	svg, err := ctl.presenter.Chart(uri.Name, ctl.dashboard.Build(r))
	if errors.Is(err, views.ErrUnknownChart) {
		response.NotFound(c, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// Sidebar 侧边栏图片
func (ctl *DashboardController) Sidebar(c *gin.Context) {
	if ctl.sidebarPath == "" {
		response.NotFound(c, "sidebar image not configured")
		return
	}
	if _, err := os.Stat(ctl.sidebarPath); err != nil {
		response.NotFound(c, "sidebar image not found")
		return
	}
	c.File(ctl.sidebarPath)
}
