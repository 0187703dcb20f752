package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/papichoolo/shds-admin/internal/api/collection/models"
)

// NewCollectionsCommand in danh mục collection đang được engine phục vụ
func NewCollectionsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collection catalog (required fields, relationships, roles)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := models.NewCatalogRegistry()
			defs := make([]models.CollectionDefinition, 0, reg.Len())
			for _, name := range reg.Names() {
				def, _ := reg.Get(name)
				defs = append(defs, def)
			}
			return writeCatalog(cmd.OutOrStdout(), opts.Format, defs)
		},
	}
}

func writeCatalog(w io.Writer, format string, defs []models.CollectionDefinition) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(defs)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(defs)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSCOPE\tCREATE\tREAD\tREQUIRED\tRELATIONSHIPS")
	for _, d := range defs {
		scope := d.BranchScopeField
		if scope == "" {
			scope = "-"
		}
		rels := make([]string, 0, len(d.RelationshipRules))
		for _, r := range d.RelationshipRules {
			target := strings.Join(r.Targets, "|")
			if r.AnyCollection {
				target = "*"
			}
			rel := r.FieldPath + "->" + target
			if r.Optional {
				rel += "?"
			}
			rels = append(rels, rel)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.Name, scope,
			strings.Join(d.CreateRoles, ","), strings.Join(d.ReadRoles, ","),
			strings.Join(d.RequiredFields, ","), strings.Join(rels, " "))
	}
	return tw.Flush()
}
