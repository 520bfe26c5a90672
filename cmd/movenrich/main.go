package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/dbsmedya/movenrich/cmd/movenrich/cmd"
)

func main() {
	cmd.Execute()
}
