// Command devtoken prints a signed access token for local testing of the
// authenticated video routes.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videotube-api/internal/auth"
	"videotube-api/internal/config"
)

func main() {
	userID := flag.String("user", "", "hex ObjectID of the user the token is issued for")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if _, err := primitive.ObjectIDFromHex(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken: -user must be a 24 character hex ObjectID")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	token, err := auth.IssueToken(cfg.JWTSecret, *userID, *ttl)
	if err != nil {
		slog.Error("issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
