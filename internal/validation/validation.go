// Package validation verifies at startup that the services listed in
// REQUIRED_SERVICES are configured and reachable.
package validation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/puffbuddy/backend/internal/logger"
	"go.uber.org/zap"
)

// CheckTimeout bounds each service check
const CheckTimeout = 10 * time.Second

// Check reports whether a service is reachable
type Check func(ctx context.Context) error

// ServiceValidator handles validation of required services
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]Check
}

// NewServiceValidator creates a validator for the services named in
// REQUIRED_SERVICES
func NewServiceValidator() *ServiceValidator {
	return NewServiceValidatorFor(ParseRequiredServices(os.Getenv("REQUIRED_SERVICES")))
}

// NewServiceValidatorFor creates a validator for an explicit service list
func NewServiceValidatorFor(required []string) *ServiceValidator {
	return &ServiceValidator{
		requiredServices: required,
		checks:           make(map[string]Check),
	}
}

// Register adds the check for a configured service. Services that were
// never configured have no check.
func (sv *ServiceValidator) Register(name string, check Check) *ServiceValidator {
	sv.checks[strings.ToLower(name)] = check
	return sv
}

// Registered returns the names of services with a check, sorted
func (sv *ServiceValidator) Registered() []string {
	names := make([]string, 0, len(sv.checks))
	for name := range sv.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateServices runs the check of every required service and fails on the
// first one that is unconfigured or unreachable
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.requiredServices) == 0 {
		logger.Log.Info("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services",
		zap.Strings("services", sv.requiredServices),
	)

	for _, serviceName := range sv.requiredServices {
		check, ok := sv.checks[serviceName]
		if !ok {
			logger.Log.Error("Required service is not configured",
				zap.String("service", serviceName),
			)
			return fmt.Errorf("required service '%s' is not configured", serviceName)
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			logger.Log.Error("Required service validation failed",
				zap.String("service", serviceName),
				zap.Error(err),
			)
			return fmt.Errorf("required service '%s' validation failed: %w", serviceName, err)
		}

		logger.Log.Info("Service validated successfully",
			zap.String("service", serviceName),
		)
	}

	logger.Log.Info("All required services validated successfully")
	return nil
}

// ParseRequiredServices splits a comma-separated service list, lowercasing
// names and dropping blanks and duplicates
func ParseRequiredServices(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var services []string
	for _, s := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(s))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		services = append(services, name)
	}
	return services
}
