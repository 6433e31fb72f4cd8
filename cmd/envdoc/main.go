package main

import (
	"fmt"

	"deskgate/internal/config"
)

func main() {
	fmt.Println("# deskgate Environment Variables")
	fmt.Println()
	fmt.Println("Environment variables override values from the configuration file.")
	fmt.Println("Empty values are ignored. A .env file in the working directory is loaded first.")
	fmt.Println()
	fmt.Println("## Available Environment Variables")
	fmt.Println()

	for _, example := range config.EnvExample() {
		fmt.Printf("- `%s`\n", example)
	}

	fmt.Println()
	fmt.Println("## Examples")
	fmt.Println()
	fmt.Println("```bash")
	fmt.Println("# Admin credentials and signing secret")
	fmt.Println("export DESKGATE_AUTH_SECRET=change-me")
	fmt.Println("export DESKGATE_AUTH_ADMINEMAIL=admin@example.com")
	fmt.Println("export DESKGATE_AUTH_ADMINPASSWORD=change-me-too")
	fmt.Println()
	fmt.Println("# Share rate limit counters across instances")
	fmt.Println("export DESKGATE_RATELIMIT_STORAGE=redis")
	fmt.Println("export DESKGATE_RATELIMIT_REDIS_HOST=redis.internal")
	fmt.Println()
	fmt.Println("# Tighten login attempts")
	fmt.Println("export DESKGATE_RATELIMIT_GROUPS_LOGIN_MAX=5")
	fmt.Println()
	fmt.Println("./deskgate -config deskgate.yaml")
	fmt.Println("```")
}
