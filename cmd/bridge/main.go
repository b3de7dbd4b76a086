// Command bridge runs the JSON-over-HTTP ledger bridge: it reads a main
// .dar file, decodes it into an in-memory Archive, and translates HTTP
// requests into ledger gRPC commands against the types the Archive
// describes.
//
// # Configuration
//
// Environment variables:
//
//	BRIDGE_ADDR             - HTTP listen address (default: ":8080")
//	LEDGER_ADDR             - ledger gRPC address (default: "localhost:6865")
//	LEDGER_TLS              - enable TLS to the ledger (default: "false")
//	LEDGER_CONNECT_TIMEOUT  - per-RPC retry budget (default: "30s")
//	MAIN_DAR_PATH           - path to the main .dar file to load at startup
//	ARCHIVE_REFRESH_INTERVAL - periodic reload interval (default: "60s")
//
// # Example
//
//	MAIN_DAR_PATH=./PingPong.dar LEDGER_ADDR=localhost:6865 go run ./cmd/bridge
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/daml-lf/bridge/bridge"
	"github.com/daml-lf/bridge/ledger"
	"github.com/daml-lf/bridge/lf/decode"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lferrors"
	"github.com/daml-lf/bridge/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	addr := envOr("BRIDGE_ADDR", ":8080")
	ledgerAddr := envOr("LEDGER_ADDR", "localhost:6865")
	ledgerTLS := envBoolOr("LEDGER_TLS", false)
	connectTimeout := envDurationOr("LEDGER_CONNECT_TIMEOUT", 30*time.Second)
	refreshInterval := envDurationOr("ARCHIVE_REFRESH_INTERVAL", 60*time.Second)
	darPath := os.Getenv("MAIN_DAR_PATH")
	if darPath == "" {
		return fmt.Errorf("MAIN_DAR_PATH is required")
	}

	logger := telemetry.NewZerologLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())

	f, err := os.Open(darPath)
	if err != nil {
		return fmt.Errorf("open main dar: %w", err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat main dar: %w", err)
	}
	archive, err := decode.LoadDar(f, stat.Size(), darPath)
	if err != nil {
		return fmt.Errorf("decode main dar: %w", err)
	}

	var dialOpts []grpc.DialOption
	if ledgerTLS {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(nil)))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(ledgerAddr, dialOpts...)
	if err != nil {
		return fmt.Errorf("connect to ledger: %w", err)
	}
	defer conn.Close()

	client := ledger.NewGRPCClient(conn, connectTimeout)

	server := bridge.NewServer(archive, client,
		bridge.WithLogger(logger),
		bridge.WithMetrics(telemetry.NewOtelMetrics()),
		bridge.WithTracer(telemetry.NewOtelTracer()),
		bridge.WithRefreshInterval(refreshInterval),
		bridge.WithDecodeDar(func(data []byte, name string) (*types.Archive, error) {
			return decode.LoadDar(bytes.NewReader(data), int64(len(data)), name)
		}),
	)

	fetchMainDar := func(ctx context.Context) ([]byte, string, error) {
		ids, err := client.ListPackages(ctx, ledger.CallOption{})
		if err != nil {
			return nil, "", err
		}
		if len(ids) == 0 {
			return nil, "", fmt.Errorf("ledger reports no packages")
		}
		payload, err := client.GetPackage(ctx, ids[0], ledger.CallOption{})
		if err != nil {
			return nil, "", err
		}
		return payload, darPath, nil
	}
	server.StartPeriodicRefresh(ctx, fetchMainDar)
	defer server.StopPeriodicRefresh()

	mux := newMux(server)
	log.Printf("starting bridge on %s (ledger=%s)", addr, ledgerAddr)
	return http.ListenAndServe(addr, mux)
}

func writeEnvelope(w http.ResponseWriter, env bridge.Envelope, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		errEnv := bridge.ErrorEnvelope(err)
		w.WriteHeader(errEnv.Status)
		_ = json.NewEncoder(w).Encode(errEnv)
		return
	}
	w.WriteHeader(env.Status)
	_ = json.NewEncoder(w).Encode(env)
}

func callOption(r *http.Request) ledger.CallOption {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return ledger.CallOption{BearerToken: auth[len(prefix):]}
	}
	return ledger.CallOption{}
}

func newMux(s *bridge.Server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/create", func(w http.ResponseWriter, r *http.Request) {
		var req bridge.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "create", func(ctx context.Context) (bridge.Envelope, error) {
			return s.Create(ctx, req, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("POST /v1/exercise", func(w http.ResponseWriter, r *http.Request) {
		var req bridge.ExerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "exercise", func(ctx context.Context) (bridge.Envelope, error) {
			if req.ContractID != nil {
				return s.Exercise(ctx, req, callOption(r))
			}
			return s.ExerciseByKey(ctx, req, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("POST /v1/create-and-exercise", func(w http.ResponseWriter, r *http.Request) {
		var req bridge.CreateAndExerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "create-and-exercise", func(ctx context.Context) (bridge.Envelope, error) {
			return s.CreateAndExercise(ctx, req, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("POST /v1/archive", func(w http.ResponseWriter, r *http.Request) {
		var req bridge.ArchiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "archive", func(ctx context.Context) (bridge.Envelope, error) {
			return s.ArchiveContract(ctx, req, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("POST /v1/parties", func(w http.ResponseWriter, r *http.Request) {
		var ids []string
		if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "fetch-parties", func(ctx context.Context) (bridge.Envelope, error) {
			return s.FetchParties(ctx, ids, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("GET /v1/parties", func(w http.ResponseWriter, r *http.Request) {
		env, err := s.Handle(r.Context(), "list-parties", func(ctx context.Context) (bridge.Envelope, error) {
			return s.ListKnownParties(ctx, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("POST /v1/parties/allocate", func(w http.ResponseWriter, r *http.Request) {
		var req bridge.AllocatePartyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "allocate-party", func(ctx context.Context) (bridge.Envelope, error) {
			return s.AllocateParty(ctx, req, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("GET /v1/packages", func(w http.ResponseWriter, r *http.Request) {
		env, err := s.Handle(r.Context(), "list-packages", func(ctx context.Context) (bridge.Envelope, error) {
			return s.ListPackages(ctx, callOption(r))
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("POST /v1/packages", func(w http.ResponseWriter, r *http.Request) {
		dar, err := io.ReadAll(r.Body)
		if err != nil {
			writeEnvelope(w, bridge.Envelope{}, lferrors.NewWithCause(lferrors.KindTranslation, "invalid request body", err))
			return
		}
		env, err := s.Handle(r.Context(), "upload-dar", func(ctx context.Context) (bridge.Envelope, error) {
			err := s.UploadDar(ctx, dar, "uploaded.dar", callOption(r))
			if errors.Is(err, bridge.ErrReloadInProgress) {
				err = s.UploadDar(ctx, dar, "uploaded.dar", callOption(r))
			}
			if err != nil {
				return bridge.Envelope{}, err
			}
			return bridge.Envelope{Status: 200}, nil
		})
		writeEnvelope(w, env, err)
	})

	mux.HandleFunc("GET /v1/packages/{id}", func(w http.ResponseWriter, r *http.Request) {
		data, err := s.GetPackage(r.Context(), r.PathValue("id"), callOption(r))
		if err != nil {
			writeEnvelope(w, bridge.Envelope{}, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(lferrors.Envelope{
			Status: http.StatusNotFound,
			Errors: []string{fmt.Sprintf("no such route: %s %s", r.Method, r.URL.Path)},
		})
	})

	return mux
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envBoolOr(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDurationOr(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
