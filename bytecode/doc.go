// Package bytecode provides the in-memory bytecode model that patches operate on.
//
// A Program is an ordered collection of classes. Each Class holds its methods in
// declaration order, and each Method carries its return type, parameter types,
// access flags and instruction stream. Instructions use Dalvik opcodes and the
// smali mnemonics for those opcodes.
//
// # Quick Start
//
// Load a program from a listing document:
//
//	prog, err := bytecode.ParseListingFile("app.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range prog.Classes() {
//	    fmt.Println(c.Type, len(c.Methods))
//	}
//
// # Listings
//
// A listing is a YAML or JSON document describing classes, methods and
// instructions in text form:
//
//	classes:
//	  - type: Lcom/example/Gate;
//	    super: Ljava/lang/Object;
//	    access: [public]
//	    methods:
//	      - name: a
//	        returns: Z
//	        parameters: [Ljava/lang/String;]
//	        access: [public, static]
//	        instructions:
//	          - const-string v0, "premium"
//	          - invoke-static v0, Lcom/example/Store;->has(Ljava/lang/String;)Z
//	          - move-result v1
//	          - return v1
//
// Instruction operands are comma separated. vN names a register, a quoted
// operand is a string constant, an integer is the literal, and anything else is
// a type, field or method reference.
//
// # Mutation
//
// Reads go through Model.Classes and Model.Class. Writes go through
// Model.Mutable, which returns a writable copy of a class. The first Mutable
// call for a type creates the copy and later calls return the same handle, so
// every patch in a run edits one shared class.
//
//	cls, err := prog.Mutable("Lcom/example/Gate;")
//	m, _, _ := cls.FindMethod("a")
//	_ = m.ReplaceInstruction(0, bytecode.Instruction{
//	    Opcode: bytecode.OpConst4, Registers: []int{1}, Literal: 1, HasLiteral: true,
//	})
package bytecode
