package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/rentalmanager/internal/testutil"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the rentalmanager Postgres and Redis testcontainers with the environment variables from the .env file.
Prints the variables to point the server at them, then waits for a signal.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx := context.Background()
	creds := testutil.PostgresCredentials{
		Database: getEnv("DB_DATABASE", "rentalmanager"),
		User:     getEnv("DB_USER", "rental"),
		Password: getEnv("DB_PASSWORD", "rental"),
	}

	postgres, err := testutil.StartPostgres(ctx, os.Getenv("POSTGRES_IMAGE"), creds)
	if err != nil {
		log.Fatalf("Failed to start postgres container: %v\n", err)
	}
	redis, err := testutil.StartRedis(ctx, os.Getenv("REDIS_IMAGE"))
	if err != nil {
		_ = postgres.Terminate(ctx)
		log.Fatalf("Failed to start redis container: %v\n", err)
	}

	fmt.Printf("DB_TYPE=postgres\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\nREDIS_URL=redis://%s\n",
		postgres.Host, postgres.Port, creds.Database, creds.User, creds.Password, redis.Address())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	if err := redis.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate redis: %v\n", err)
	}
	if err := postgres.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate postgres: %v\n", err)
	}
}
