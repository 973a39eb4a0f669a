package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/maximlamare/S3-extract/util"
)

func main() {
	//A .env file is optional. The environment wins when both set a value.
	godotenv.Load()

	util.LogAudit(&(util.BasicLogContext{}), util.LogAuditInput{Actor: "main()", Action: "startup", Actee: "self", Message: "Application Startup", Severity: util.INFO})
	err := createCliApp().Run(os.Args)
	if err != nil {
		util.LogAlert(&(util.BasicLogContext{}), fmt.Sprintf("Error executing CLI app: %v", err))
	}
}
