package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"stock-predictor/src/chart"
	"stock-predictor/src/config"
	"stock-predictor/src/dashboard"
	"stock-predictor/src/data_source/yahoo"
	"stock-predictor/src/forecast"
	"stock-predictor/src/grpc_control"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/network"
	"stock-predictor/src/server"

	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	dumpConfig := flag.String("dump-config", "", "write the effective config to this path and exit")
	flag.Parse()

	// Load config from YAML file, .env and environment
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *dumpConfig != "" {
		if err := config.Save(*dumpConfig); err != nil {
			fmt.Printf("Error saving config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Setup logger
	logger.Init(config.LogLevel)
	appLogger := logger.NewLogger(config, config.Name)
	defer appLogger.Sync()

	// Setup components
	var networkManager interfaces.INetworkManager = network.NewNetworkManager(config.MConfig, appLogger)
	var source interfaces.IDataSource = yahoo.NewYahooFinanceSource(config.MConfig, networkManager)
	var forecaster interfaces.IForecaster = forecast.NewForecaster(config.MConfig)
	var renderer interfaces.IChartRenderer = chart.NewRenderer(config.MConfig)

	dash := dashboard.NewDashboard(config.MConfig, source, forecaster, renderer)

	// Start HTTP server (page, REST API, websocket)
	srv := server.NewDashboardServer(config.MConfig, dash)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// Optional gRPC surface
	var grpcServer *grpc.Server
	if config.GrpcPort != 0 {
		grpcServer = grpc_control.NewGRPCServer(grpc_control.NewForecastService(config.MConfig, dash))
		go func() {
			appLogger.Info("Starting gRPC ForecastService on %s:%d", config.GrpcHost, config.GrpcPort)
			if err := grpc_control.Serve(grpcServer, config.GrpcHost, config.GrpcPort); err != nil {
				appLogger.Critical("failed to serve gRPC: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP shutdown: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
