package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"clipper-mock/core/auth"
	"clipper-mock/core/rbac"
	"clipper-mock/core/store"
	"clipper-mock/core/utils"
)

func Run() {
	seedUserCmd := flag.NewFlagSet("seed-user", flag.ExitOnError)
	username := seedUserCmd.String("u", "", "username")
	password := seedUserCmd.String("p", "", "password")
	role := seedUserCmd.String("role", rbac.RoleUser, "role (admin, moderator, user)")

	totpCmd := flag.NewFlagSet("totp-code", flag.ExitOnError)
	secret := totpCmd.String("secret", "", "base32 TOTP secret")

	if len(os.Args) < 2 {
		fmt.Println("commands: seed-user, totp-code")
		return
	}

	switch os.Args[1] {
	case "seed-user":
		_ = seedUserCmd.Parse(os.Args[2:])
		logger := utils.NewLogger()
		if *username == "" || *password == "" {
			logger.Fatalf("seed-user: -u and -p are required")
		}
		st := store.New()
		ph := auth.MustHashPassword(*password)
		id, err := st.Users.Seed(context.Background(), &store.User{
			Username:     *username,
			DisplayName:  *username,
			Role:         *role,
			PasswordHash: ph.Hash,
			PasswordSalt: ph.Salt,
		})
		if err != nil {
			logger.Fatalf("seed: %v", err)
		}
		fmt.Printf("user seeded: %s\n", id)
	case "totp-code":
		_ = totpCmd.Parse(os.Args[2:])
		logger := utils.NewLogger()
		if *secret == "" {
			logger.Fatalf("totp-code: -secret is required")
		}
		code, err := auth.ComputeTOTPCode(*secret, time.Now(), auth.DefaultTOTPConfig())
		if err != nil {
			logger.Fatalf("totp: %v", err)
		}
		fmt.Println(code)
	default:
		fmt.Println("unknown command")
	}
}
