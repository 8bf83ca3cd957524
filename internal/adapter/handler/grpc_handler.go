package handler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/cvagheti/microservice-ddd-hexagonal/internal/core/domain"
	"github.com/cvagheti/microservice-ddd-hexagonal/internal/port"
)

const (
	CatalogServiceName = "catalog.v1.ProductCatalog"
	jsonCodecName      = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec lets the catalog service exchange plain Go structs, selected by
// the "application/grpc+json" content type.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return jsonCodecName }

type ProductIDRequest struct {
	ID string `json:"id"`
}

type StockRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// ListProductsRequest filters by name when Name is set, else by status when
// ActiveOnly is set.
type ListProductsRequest struct {
	Name       string `json:"name,omitempty"`
	ActiveOnly bool   `json:"active_only,omitempty"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type StatisticsRequest struct{}

// CatalogServer is the server side of catalog.v1.ProductCatalog.
type CatalogServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	GetProduct(context.Context, *ProductIDRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	AddStock(context.Context, *StockRequest) (*ProductResponse, error)
	RemoveStock(context.Context, *StockRequest) (*ProductResponse, error)
	GetInventoryStatistics(context.Context, *StatisticsRequest) (*domain.InventoryStatistics, error)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProduct", Handler: unaryHandler("CreateProduct", CatalogServer.CreateProduct)},
		{MethodName: "GetProduct", Handler: unaryHandler("GetProduct", CatalogServer.GetProduct)},
		{MethodName: "ListProducts", Handler: unaryHandler("ListProducts", CatalogServer.ListProducts)},
		{MethodName: "AddStock", Handler: unaryHandler("AddStock", CatalogServer.AddStock)},
		{MethodName: "RemoveStock", Handler: unaryHandler("RemoveStock", CatalogServer.RemoveStock)},
		{MethodName: "GetInventoryStatistics", Handler: unaryHandler("GetInventoryStatistics", CatalogServer.GetInventoryStatistics)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

func unaryHandler[Req, Resp any](method string, call func(CatalogServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodPath(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func methodPath(method string) string {
	return "/" + CatalogServiceName + "/" + method
}

type GRPCHandler struct {
	commands port.ProductCommandUseCase
	queries  port.ProductQueryUseCase
	logger   *zap.Logger
}

var _ CatalogServer = (*GRPCHandler)(nil)

func NewGRPCHandler(commands port.ProductCommandUseCase, queries port.ProductQueryUseCase, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{commands: commands, queries: queries, logger: logger}
}

func (h *GRPCHandler) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	if err := req.validate(); err != nil {
		return nil, h.toStatus(err)
	}
	product, err := h.commands.CreateProduct(ctx, req.command())
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (h *GRPCHandler) GetProduct(ctx context.Context, req *ProductIDRequest) (*ProductResponse, error) {
	product, err := h.queries.FindProductByID(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	var (
		products []*domain.Product
		err      error
	)
	switch {
	case req.Name != "":
		products, err = h.queries.FindProductsByName(ctx, req.Name)
	case req.ActiveOnly:
		products, err = h.queries.FindActiveProducts(ctx)
	default:
		products, err = h.queries.FindAllProducts(ctx)
	}
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ListProductsResponse{Products: toProductResponses(products)}, nil
}

func (h *GRPCHandler) AddStock(ctx context.Context, req *StockRequest) (*ProductResponse, error) {
	product, err := h.commands.AddStock(ctx, req.ID, req.Quantity)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (h *GRPCHandler) RemoveStock(ctx context.Context, req *StockRequest) (*ProductResponse, error) {
	product, err := h.commands.RemoveStock(ctx, req.ID, req.Quantity)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (h *GRPCHandler) GetInventoryStatistics(ctx context.Context, _ *StatisticsRequest) (*domain.InventoryStatistics, error) {
	stats, err := h.queries.GetInventoryStatistics(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &stats, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	code := grpcCode(err)
	if code == codes.Internal {
		h.logger.Error("rpc failed", zap.Error(err))
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

// CatalogClient calls catalog.v1.ProductCatalog with the JSON codec.
type CatalogClient struct {
	conn grpc.ClientConnInterface
}

func NewCatalogClient(conn grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{conn: conn}
}

func (c *CatalogClient) CreateProduct(ctx context.Context, req *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.conn, "CreateProduct", req, opts)
}

func (c *CatalogClient) GetProduct(ctx context.Context, req *ProductIDRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.conn, "GetProduct", req, opts)
}

func (c *CatalogClient) ListProducts(ctx context.Context, req *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.conn, "ListProducts", req, opts)
}

func (c *CatalogClient) AddStock(ctx context.Context, req *StockRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.conn, "AddStock", req, opts)
}

func (c *CatalogClient) RemoveStock(ctx context.Context, req *StockRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.conn, "RemoveStock", req, opts)
}

func (c *CatalogClient) GetInventoryStatistics(ctx context.Context, opts ...grpc.CallOption) (*domain.InventoryStatistics, error) {
	return invoke[domain.InventoryStatistics](ctx, c.conn, "GetInventoryStatistics", &StatisticsRequest{}, opts)
}

func invoke[Resp any](ctx context.Context, conn grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	callOpts := make([]grpc.CallOption, 0, len(opts)+1)
	callOpts = append(callOpts, grpc.CallContentSubtype(jsonCodecName))
	callOpts = append(callOpts, opts...)

	out := new(Resp)
	if err := conn.Invoke(ctx, methodPath(method), in, out, callOpts...); err != nil {
		return nil, err
	}
	return out, nil
}
