package main

import "github.com/yubota24504/FileVizDedup/internal/app"

func main() {
	app.Run()
}
