// Package cin parses CIN input method tables and answers lookups in both
// directions: key sequence to characters, character to key sequences, and
// keystrokes to display symbols and back.
//
// A table file looks like
//
//	%cname phonetic
//	%endkey 3467
//	%keyname begin
//	1 ㄅ
//	...
//	%keyname end
//	%chardef begin
//	1 巴
//	...
//	%chardef end
//
// Tables are immutable once parsed. A Coordinator drives interactive
// composition against one table and annotates the results from another.
package cin
