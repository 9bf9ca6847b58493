package cmd

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"
)

var listServicesCmd = &cobra.Command{
	Use:   "list-services [dir]",
	Short: "Lists all services discoverable via the service registry",
	Long: `Scans the codebase for definitions of registry.Key[...] to find the
services modules register at startup and the types they resolve to.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "./"
		if len(args) == 1 {
			root = args[0]
		}
		services, err := findRegistryKeys(root)
		if err != nil {
			return fmt.Errorf("failed to find registry keys: %w", err)
		}
		if len(services) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No services found in the registry.")
			return nil
		}
		return printServices(cmd.OutOrStdout(), services)
	},
}

func init() {
	rootCmd.AddCommand(listServicesCmd)
}

// ServiceInfo is one registry key declaration.
type ServiceInfo struct {
	Key     string
	Type    string
	Package string
}

// findRegistryKeys loads every package under root and collects
// `var X = registry.Key[T]("name")` declarations.
func findRegistryKeys(root string) ([]ServiceInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  root,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var services []ServiceInfo
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, s := range keysInFile(file, pkg.TypesInfo) {
				s.Package = pkg.PkgPath
				services = append(services, s)
			}
		}
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Key < services[j].Key })
	return services, nil
}

func keysInFile(file *ast.File, info *types.Info) []ServiceInfo {
	var out []ServiceInfo
	ast.Inspect(file, func(n ast.Node) bool {
		decl, ok := n.(*ast.GenDecl)
		if !ok || decl.Tok != token.VAR {
			return true
		}
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, v := range vs.Values {
				if s, ok := registryKey(v, info); ok {
					out = append(out, s)
				}
			}
		}
		return true
	})
	return out
}

// registryKey matches registry.Key[T]("name"). A single type argument parses
// as an IndexExpr; IndexListExpr is accepted too.
func registryKey(expr ast.Expr, info *types.Info) (ServiceInfo, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return ServiceInfo{}, false
	}

	var base, typeArg ast.Expr
	switch fun := call.Fun.(type) {
	case *ast.IndexExpr:
		base, typeArg = fun.X, fun.Index
	case *ast.IndexListExpr:
		if len(fun.Indices) != 1 {
			return ServiceInfo{}, false
		}
		base, typeArg = fun.X, fun.Indices[0]
	default:
		return ServiceInfo{}, false
	}

	if info != nil {
		named, ok := info.TypeOf(base).(*types.Named)
		if !ok || named.Obj().Name() != "Key" || named.Obj().Pkg() == nil ||
			!strings.HasSuffix(named.Obj().Pkg().Path(), "internal/registry") {
			return ServiceInfo{}, false
		}
	} else if sel, ok := base.(*ast.SelectorExpr); !ok || sel.Sel.Name != "Key" {
		return ServiceInfo{}, false
	}

	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return ServiceInfo{}, false
	}
	key, err := strconv.Unquote(lit.Value)
	if err != nil {
		return ServiceInfo{}, false
	}
	return ServiceInfo{Key: key, Type: types.ExprString(typeArg)}, true
}

func printServices(w io.Writer, services []ServiceInfo) error {
	fmt.Fprintln(w, "Available Services in the Registry:")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tPACKAGE")
	fmt.Fprintln(tw, "---\t----\t-------")
	for _, s := range services {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Key, s.Type, s.Package)
	}
	return tw.Flush()
}
