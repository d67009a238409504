package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the bill service.
const BillServiceName = "billreminder.v1.BillService"

// Procedure paths of the bill service.
const (
	BillServiceCreateBillProcedure    = "/" + BillServiceName + "/CreateBill"
	BillServiceImportBillsProcedure   = "/" + BillServiceName + "/ImportBills"
	BillServiceGetBillProcedure       = "/" + BillServiceName + "/GetBill"
	BillServiceListBillsProcedure     = "/" + BillServiceName + "/ListBills"
	BillServiceUpdateBillProcedure    = "/" + BillServiceName + "/UpdateBill"
	BillServiceSetBillPaidProcedure   = "/" + BillServiceName + "/SetBillPaid"
	BillServiceDeleteBillProcedure    = "/" + BillServiceName + "/DeleteBill"
	BillServiceListRemindersProcedure = "/" + BillServiceName + "/ListReminders"
	BillServiceGetDashboardProcedure  = "/" + BillServiceName + "/GetDashboard"
)

// BillServiceHandler is implemented by the server side of the bill service.
type BillServiceHandler interface {
	CreateBill(context.Context, *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error)
	ImportBills(context.Context, *connect.Request[ImportBillsRequest]) (*connect.Response[ImportBillsResponse], error)
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error)
	ListBills(context.Context, *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error)
	UpdateBill(context.Context, *connect.Request[UpdateBillRequest]) (*connect.Response[UpdateBillResponse], error)
	SetBillPaid(context.Context, *connect.Request[SetBillPaidRequest]) (*connect.Response[SetBillPaidResponse], error)
	DeleteBill(context.Context, *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error)
	ListReminders(context.Context, *connect.Request[ListRemindersRequest]) (*connect.Response[ListRemindersResponse], error)
	GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error)
}

// NewBillServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)

	handlers := map[string]http.Handler{
		BillServiceCreateBillProcedure:    connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...),
		BillServiceImportBillsProcedure:   connect.NewUnaryHandler(BillServiceImportBillsProcedure, svc.ImportBills, opts...),
		BillServiceGetBillProcedure:       connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...),
		BillServiceListBillsProcedure:     connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...),
		BillServiceUpdateBillProcedure:    connect.NewUnaryHandler(BillServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		BillServiceSetBillPaidProcedure:   connect.NewUnaryHandler(BillServiceSetBillPaidProcedure, svc.SetBillPaid, opts...),
		BillServiceDeleteBillProcedure:    connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...),
		BillServiceListRemindersProcedure: connect.NewUnaryHandler(BillServiceListRemindersProcedure, svc.ListReminders, opts...),
		BillServiceGetDashboardProcedure:  connect.NewUnaryHandler(BillServiceGetDashboardProcedure, svc.GetDashboard, opts...),
	}
	return serviceMux(BillServiceName, handlers)
}

// BillServiceClient calls the bill service.
type BillServiceClient struct {
	createBill    *connect.Client[CreateBillRequest, CreateBillResponse]
	importBills   *connect.Client[ImportBillsRequest, ImportBillsResponse]
	getBill       *connect.Client[GetBillRequest, GetBillResponse]
	listBills     *connect.Client[ListBillsRequest, ListBillsResponse]
	updateBill    *connect.Client[UpdateBillRequest, UpdateBillResponse]
	setBillPaid   *connect.Client[SetBillPaidRequest, SetBillPaidResponse]
	deleteBill    *connect.Client[DeleteBillRequest, DeleteBillResponse]
	listReminders *connect.Client[ListRemindersRequest, ListRemindersResponse]
	getDashboard  *connect.Client[GetDashboardRequest, GetDashboardResponse]
}

// NewBillServiceClient creates a client for the bill service at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &BillServiceClient{
		createBill:    connect.NewClient[CreateBillRequest, CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		importBills:   connect.NewClient[ImportBillsRequest, ImportBillsResponse](httpClient, baseURL+BillServiceImportBillsProcedure, opts...),
		getBill:       connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		listBills:     connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		updateBill:    connect.NewClient[UpdateBillRequest, UpdateBillResponse](httpClient, baseURL+BillServiceUpdateBillProcedure, opts...),
		setBillPaid:   connect.NewClient[SetBillPaidRequest, SetBillPaidResponse](httpClient, baseURL+BillServiceSetBillPaidProcedure, opts...),
		deleteBill:    connect.NewClient[DeleteBillRequest, DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		listReminders: connect.NewClient[ListRemindersRequest, ListRemindersResponse](httpClient, baseURL+BillServiceListRemindersProcedure, opts...),
		getDashboard:  connect.NewClient[GetDashboardRequest, GetDashboardResponse](httpClient, baseURL+BillServiceGetDashboardProcedure, opts...),
	}
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ImportBills(ctx context.Context, req *connect.Request[ImportBillsRequest]) (*connect.Response[ImportBillsResponse], error) {
	return c.importBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) UpdateBill(ctx context.Context, req *connect.Request[UpdateBillRequest]) (*connect.Response[UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) SetBillPaid(ctx context.Context, req *connect.Request[SetBillPaidRequest]) (*connect.Response[SetBillPaidResponse], error) {
	return c.setBillPaid.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteBill(ctx context.Context, req *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListReminders(ctx context.Context, req *connect.Request[ListRemindersRequest]) (*connect.Response[ListRemindersResponse], error) {
	return c.listReminders.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

// serviceMux routes a service's procedures under its path prefix.
func serviceMux(serviceName string, handlers map[string]http.Handler) (string, http.Handler) {
	return "/" + serviceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
