package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component of the watch loop. Start blocks until
// the service ends or fails; Stop asks it to end.
type Service interface {
	Start() error
	Stop()
}

// Supervisor runs the watcher and runner together: services start in order,
// stop in reverse order, and any service failure or termination signal shuts
// the whole loop down.
type Supervisor struct {
	logger   *zap.Logger
	names    []string
	services []Service
}

// NewSupervisor creates an empty supervisor.
//
// Precondition: logger is non-nil.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{logger: logger}
}

// Add registers a named service. Services start in registration order.
func (s *Supervisor) Add(name string, svc Service) {
	s.names = append(s.names, name)
	s.services = append(s.services, svc)
}

// Run starts every service and blocks until SIGINT, SIGTERM, or a service
// failure, then stops everything in reverse order.
//
// Postcondition: all services have been stopped when Run returns.
func (s *Supervisor) Run() error {
	start := time.Now()
	errCh := make(chan error, len(s.services))

	for i, svc := range s.services {
		name := s.names[i]
		svc := svc
		go func() {
			s.logger.Info("starting service", zap.String("service", name))
			if err := svc.Start(); err != nil {
				errCh <- fmt.Errorf("service %s: %w", name, err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var failure error
	select {
	case sig := <-sigCh:
		s.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case failure = <-errCh:
		s.logger.Error("service failed, shutting down", zap.Error(failure))
	}

	for i := len(s.services) - 1; i >= 0; i-- {
		s.logger.Info("stopping service", zap.String("service", s.names[i]))
		s.services[i].Stop()
	}
	s.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(start)))
	return failure
}
