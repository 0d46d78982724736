// Copyright 2024 The jclass Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// license that can be found in the LICENSE file.

// Command jclassdump prints the structure of a .class file: its
// constant pool, fields, methods, and inner classes.
//
// Grounded on the teacher's cmd/pedumper.go: a cobra root command with
// boolean dump-section flags, each driving one pretty-printed section
// of the decoded structure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-jvm/jclass"
)

var (
	flagConstantPool bool
	flagFields       bool
	flagMethods      bool
	flagInnerClasses bool
	flagPrivate      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jclassdump <path.class>",
		Short: "Dump the structure of a JVM class file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDump,
	}
	root.Flags().BoolVar(&flagConstantPool, "constantpool", false, "dump the constant pool")
	root.Flags().BoolVar(&flagFields, "fields", false, "dump fields")
	root.Flags().BoolVar(&flagMethods, "methods", false, "dump methods")
	root.Flags().BoolVar(&flagInnerClasses, "innerclasses", false, "dump inner classes")
	root.Flags().BoolVar(&flagPrivate, "private", false, "include private members in dumps")
	return root
}

func runDump(cmd *cobra.Command, args []string) error {
	cf, err := jclass.UnpackClassFile(args[0], &jclass.Options{IncludePrivate: flagPrivate})
	if err != nil {
		return fmt.Errorf("jclassdump: %w", err)
	}
	defer cf.Close()

	desc, err := cf.PrettyDescriptor()
	if err != nil {
		return err
	}
	fmt.Println(desc)
	fmt.Printf("major=%d minor=%d platform=%s\n", cf.MajorVersion, cf.MinorVersion, cf.Platform())

	if flagConstantPool {
		dumpConstantPool(cf)
	}
	if flagFields {
		dumpMembers("Fields", cf.Fields)
	}
	if flagMethods {
		dumpMembers("Methods", cf.Methods)
	}
	if flagInnerClasses {
		if err := dumpInnerClasses(cf); err != nil {
			return err
		}
	}
	return nil
}

func dumpConstantPool(cf *jclass.ClassFile) {
	fmt.Println("Constant pool:")
	for _, c := range cf.Pool.Constants() {
		if c.Err != nil {
			fmt.Printf("  #%d = <%d> error: %v\n", c.Index, c.Tag, c.Err)
			continue
		}
		pretty, err := cf.Pool.PrettyDerefConst(c.Index)
		if err != nil {
			fmt.Printf("  #%d = <%d> %v\n", c.Index, c.Tag, c.Value)
			continue
		}
		fmt.Printf("  #%d = <%d> %s\n", c.Index, c.Tag, pretty)
	}
}

func dumpMembers(title string, members []*jclass.Member) {
	fmt.Printf("%s:\n", title)
	for _, m := range members {
		if !flagPrivate && m.IsPrivate() {
			continue
		}
		desc, err := m.PrettyDescriptor()
		if err != nil {
			fmt.Printf("  <error: %v>\n", err)
			continue
		}
		fmt.Printf("  %s\n", desc)
		if m.IsDeprecated() {
			fmt.Println("    (deprecated)")
		}
	}
}

func dumpInnerClasses(cf *jclass.ClassFile) error {
	inner, err := cf.InnerClasses()
	if err != nil {
		return err
	}
	fmt.Println("InnerClasses:")
	for _, ic := range inner {
		name, err := ic.InnerClass()
		if err != nil {
			return err
		}
		fmt.Printf("  %s\n", name)
	}
	return nil
}
