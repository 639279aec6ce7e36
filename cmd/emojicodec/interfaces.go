package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"emojicode/internal/driver"
)

var (
	interfacesClear bool
	interfacesName  string
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "Inspect or clear the package interface cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenInterfaceCache("emojicodec")
		if err != nil {
			return err
		}
		if interfacesClear {
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Println("interface cache cleared")
			return nil
		}
		if interfacesName == "" {
			fmt.Printf("interface cache at %s\n", cache.Dir())
			fmt.Println("use --name to print one package, --clear to drop everything")
			return nil
		}
		payload, ok, err := cache.Get(interfacesName)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no cached interface for %q", interfacesName)
		}
		fmt.Printf("package %s %s (%s)\n", payload.Name, payload.Version, payload.Kind)
		for _, t := range payload.Types {
			fmt.Printf("  type %s\n", t.Name)
			for _, m := range t.Methods {
				fmt.Printf("    %s(%d args) -> %s\n", m.Name, len(m.Params), m.Return)
			}
		}
		return nil
	},
}

func init() {
	interfacesCmd.Flags().BoolVar(&interfacesClear, "clear", false, "remove every cached interface")
	interfacesCmd.Flags().StringVar(&interfacesName, "name", "", "package name to print")
}
