// Command fdwplandemo is an offline exerciser of the pgfdwplan core: it
// loads a YAML catalog fixture and a JSON restriction list, classifies
// and deparses them, and prints the remote SQL plus the partition
// counts. It never opens a network connection.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/sqldef/pgfdwplan"
	"github.com/sqldef/pgfdwplan/internal/catalog"
	"github.com/sqldef/pgfdwplan/util"
)

var version string

type options struct {
	Catalog   string `short:"c" long:"catalog" description:"YAML catalog fixture path" value-name:"path" required:"true"`
	Exprs     string `short:"e" long:"exprs" description:"JSON file holding the target column list and restrictions" value-name:"path" required:"true"`
	RelOID    uint   `long:"rel" description:"foreign relation OID" value-name:"oid" default:"16400"`
	RelIndex  int    `long:"rel-index" description:"range-table index of the relation being scanned" value-name:"n" default:"1"`
	BlockSize int    `long:"block-size" description:"local block size for the ANALYZE size query" value-name:"bytes" default:"8192"`
	Help      bool   `long:"help" description:"Show this help"`
	Version   bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) *options {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...]"
	if _, err := parser.ParseArgs(args); err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	return &opts
}

func main() {
	util.InitSlog()
	opts := parseOptions(os.Args[1:])

	oracle, err := catalog.LoadYAMLFixture(opts.Catalog)
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(opts.Exprs)
	if err != nil {
		log.Fatal(err)
	}
	var file exprFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Fatalf("parsing %s: %v", opts.Exprs, err)
	}
	restrictions, err := toExprSlice(file.Restrictions)
	if err != nil {
		log.Fatalf("decoding restrictions: %v", err)
	}

	relOID := pgfdwplan.OID(opts.RelOID)
	result, err := pgfdwplan.ClassifyConditions(oracle, relOID, opts.RelIndex, restrictions)
	if err != nil {
		log.Fatal(err)
	}
	slog.Info("classified restrictions",
		"remote", len(result.RemoteConds),
		"param", len(result.ParamConds),
		"local", len(result.LocalConds),
		"params", len(result.ParamIDs))

	used := pgfdwplan.UsedColumns{WholeRow: file.WholeRow, Attrs: map[int]bool{}}
	for _, attNum := range file.TargetAttrs {
		used.Attrs[attNum] = true
	}

	buf := pgfdwplan.NewBuffer()
	if err := pgfdwplan.DeparseSimpleSQL(buf, oracle, relOID, used); err != nil {
		log.Fatal(err)
	}
	pushable := append(append([]pgfdwplan.Expr{}, result.RemoteConds...), result.ParamConds...)
	if err := pgfdwplan.AppendWhereClause(buf, oracle, relOID, true, pushable); err != nil {
		log.Fatal(err)
	}
	fmt.Println("-- scan")
	fmt.Println(buf.String())

	sizeBuf := pgfdwplan.NewBuffer()
	if err := pgfdwplan.DeparseAnalyzeSizeSQL(sizeBuf, oracle, relOID, opts.BlockSize); err != nil {
		log.Fatal(err)
	}
	fmt.Println("-- analyze size")
	fmt.Println(sizeBuf.String())

	sampleBuf := pgfdwplan.NewBuffer()
	if err := pgfdwplan.DeparseAnalyzeSQL(sampleBuf, oracle, relOID); err != nil {
		log.Fatal(err)
	}
	fmt.Println("-- analyze sample")
	fmt.Println(sampleBuf.String())

	if len(result.LocalConds) > 0 {
		fmt.Printf("-- %d restriction(s) evaluated locally\n", len(result.LocalConds))
	}
}
