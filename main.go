package main

import (
	"context"
	"embed"
	"os"

	"github.com/cdtdelta/gachalink/internal/bootstrap"
	"github.com/cdtdelta/gachalink/internal/logger"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	env, err := bootstrap.Build(bootstrap.Options{})
	if err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}
	defer env.Close()

	app := NewApp(env.Scanner, env.History, env.Config.History.MaxEntries, env.Log)

	appMenu := menu.NewMenu()

	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("Scan for Link", keys.CmdOrCtrl("r"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:scan")
	})
	fileMenu.AddText("History", keys.CmdOrCtrl("h"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:history")
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(cd *menu.CallbackData) {
		runtime.Quit(app.ctx)
	})

	editMenu := appMenu.AddSubmenu("Edit")
	editMenu.AddText("Copy", keys.CmdOrCtrl("c"), nil)
	editMenu.AddText("Select All", keys.CmdOrCtrl("a"), nil)

	err = wails.Run(&options.App{
		Title:     "gachalink v" + Version + " - Convene History Link Finder",
		Width:     560,
		Height:    640,
		MinWidth:  480,
		MinHeight: 480,
		Menu:      appMenu,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:    logger.NewWailsAdapter(env.Log),
		LogLevel:  logger.WailsLevel(env.Log.GetLevel()),
		OnStartup: app.startup,
		OnShutdown: func(ctx context.Context) {
			env.Log.Debug().Msg("shutting down")
		},
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		env.Log.Error().Err(err).Msg("wails run failed")
		println("Error:", err.Error())
	}
}
