// Package grpc instruments gRPC servers and clients with otelgrpc and
// attaches the otelme span counter to server call contexts.
//
// # Server
//
//	srv := grpc.NewServer(otelmegrpc.ServerOptions(
//	    otelmegrpc.WithCounter(tel.Counter),
//	)...)
//
// Handlers then count per call with otelme.Tell(ctx, "rows").Add(n).
//
// # Client
//
//	conn, err := grpc.NewClient(target,
//	    grpc.WithStatsHandler(otelmegrpc.ClientHandler()),
//	)
package grpc
