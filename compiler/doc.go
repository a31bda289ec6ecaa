/*

Process of lowering

Vector IR (ir) ->
	optimize shuffles, align loads, carry loads over loops (opt) ->
	match intrinsic patterns (xtensa) ->
	split to native vectors (xtensa) ->
	cse ->
Vector IR with target intrinsic calls ->
	codegen ->
Machine Code

*/
package compiler
