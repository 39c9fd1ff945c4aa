package grpc_control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName       = "stockpredictor.ForecastService"
	listTickersMethod = "/" + serviceName + "/ListTickers"
	getForecastMethod = "/" + serviceName + "/GetForecast"
)

// ForecastServer is the RPC contract. Messages are well-known protobuf
// types, so no generated code is needed.
type ForecastServer interface {
	ListTickers(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	GetForecast(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ForecastService implements ForecastServer on top of the dashboard pass.
type ForecastService struct {
	Dashboard interfaces.IDashboard
	Logger    *logger.Logger
}

// NewForecastService creates a new instance of ForecastService
func NewForecastService(cfg *models.MConfig, dashboard interfaces.IDashboard) *ForecastService {
	return &ForecastService{
		Dashboard: dashboard,
		Logger:    logger.NewLogger(cfg, "ForecastService"),
	}
}

// -----------------------------------------------------------------------------

func (s *ForecastService) ListTickers(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	tickers := s.Dashboard.Tickers()
	values := make([]interface{}, len(tickers))
	for i, t := range tickers {
		values[i] = t
	}
	return structpb.NewList(values)
}

// -----------------------------------------------------------------------------

// GetForecast expects {"ticker": string, "horizon": number}. Both are
// optional and default like the page does.
func (s *ForecastService) GetForecast(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	ticker := fields["ticker"].GetStringValue()
	horizon := 0
	if v, ok := fields["horizon"]; ok {
		if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
			return nil, status.Errorf(codes.InvalidArgument, "horizon must be a number, got %v", v.AsInterface())
		}
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return nil, status.Errorf(codes.InvalidArgument, "horizon must be an integer, got %v", n)
		}
		horizon = int(n)
	}

	result, err := s.Dashboard.Run(ctx, ticker, horizon)
	if err != nil {
		if helpers.IsValidation(err) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if errors.Is(err, context.Canceled) {
			return nil, status.Error(codes.Canceled, err.Error())
		}
		s.Logger.Error("gRPC: forecast %s failed: %v", ticker, err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	if result.Failed {
		return nil, status.Error(codes.Unavailable, result.Message)
	}

	out, err := toStruct(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	s.Logger.Info("gRPC: GetForecast %s, %d rows", result.Ticker, result.Forecast.Len())
	return out, nil
}

// toStruct goes through the JSON form so dates keep their naive layout.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// -----------------------------------------------------------------------------
// Service registration
// -----------------------------------------------------------------------------

var ForecastServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ForecastServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListTickers", Handler: listTickersHandler},
		{MethodName: "GetForecast", Handler: getForecastHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockpredictor/forecast.proto",
}

func RegisterForecastServer(s grpc.ServiceRegistrar, srv ForecastServer) {
	s.RegisterService(&ForecastServiceDesc, srv)
}

func listTickersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ForecastServer).ListTickers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listTickersMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ForecastServer).ListTickers(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getForecastHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ForecastServer).GetForecast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getForecastMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ForecastServer).GetForecast(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type ForecastClient struct {
	cc grpc.ClientConnInterface
}

func NewForecastClient(cc grpc.ClientConnInterface) *ForecastClient {
	return &ForecastClient{cc: cc}
}

func (c *ForecastClient) ListTickers(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listTickersMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ForecastClient) GetForecast(ctx context.Context, ticker string, horizon int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"ticker": ticker, "horizon": horizon})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getForecastMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Server lifecycle
// -----------------------------------------------------------------------------

// NewGRPCServer builds a server with the forecast service registered.
func NewGRPCServer(svc *ForecastService) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(svc.logCalls))
	RegisterForecastServer(srv, svc)
	return srv
}

// Serve listens on host:port until the server is stopped.
func Serve(srv *grpc.Server, host string, port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("listen for gRPC: %w", err)
	}
	return srv.Serve(lis)
}

func (s *ForecastService) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	s.Logger.Debug("gRPC: %s code=%s", info.FullMethod, status.Code(err))
	return resp, err
}
