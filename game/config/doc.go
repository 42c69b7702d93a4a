// Package config is the puzzle library behind the game service.
//
// Puzzles live as files in one directory. The extension picks the encoding:
//   - .txt: the plain number format (size, robot x,y,charge, battery count,
//     then one x,y,charge line per battery)
//   - .json and .yaml/.yml: the engine.Puzzle structure, optionally with a
//     name and description
//
// A puzzle's id is its file name without the extension. Loaded puzzles are
// cached; Reload and RefreshCache drop cache entries when files change on
// disk.
//
// Usage:
//
//	manager, err := config.NewManager("puzzles")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	p, err := manager.LoadPuzzle("stromrallye0")
//	infos, err := manager.ListPuzzles()
//	err = manager.SavePuzzle("mine.yaml", p)
//
// The default puzzle is stromrallye0 when present, otherwise the first
// puzzle in the directory, otherwise engine.DefaultPuzzle.
package config
