package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/noah-isme/college-enrolment-api/internal/service"
	"github.com/noah-isme/college-enrolment-api/pkg/config"
)

// Prints a staff bearer token signed with JWT_SECRET. The name is recorded as the audit actor.
func main() {
	subject := flag.String("sub", "", "staff identifier")
	name := flag.String("name", "", "display name used on audit entries")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-sub is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	token, err := service.NewAuthService(cfg.Auth.Secret).IssueToken(*subject, *name, *ttl)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
