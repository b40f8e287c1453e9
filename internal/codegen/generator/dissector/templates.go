package dissector

import "text/template"

func tmpl(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

// Every routine and delegator shares the GIOP sub-dissector signature.
const routineParams = "tvbuff_t *tvb, packet_info *pinfo, proto_tree *tree, int *offset, MessageHeader *header, gchar *operation"

const routineArgs = "tvb, pinfo, tree, offset, header, operation"

// Scratch declarations. Their text is the identity used to share a slot
// within one routine.
const (
	declUOctet4 = "guint32   u_octet4;"
	declSOctet4 = "gint32    s_octet4;"
	declUOctet2 = "guint16   u_octet2;"
	declSOctet2 = "gint16    s_octet2;"
	declUOctet1 = "guint8    u_octet1;"
	declSOctet1 = "gint8     s_octet1;"
	declUOctet8 = "guint64   u_octet8;"
	declSOctet8 = "gint64    s_octet8;"
	declFloat   = "gfloat    my_float;"
	declDouble  = "gdouble   my_double;"
	declSeq     = "gchar   *seq = NULL;"
)

func declIndex(name string) string { return "guint32   i_" + name + ";" }
func declLimit(name string) string { return "guint32   u_octet4_loop_" + name + ";" }
func declDisc(name string) string { return "gint32    disc_s_" + name + ";" }
func declWideDisc(name string) string { return "gint64    disc_s_" + name + ";" }

// Artifact sections.

var tmplIncludes = tmpl("includes", `
#ifdef HAVE_CONFIG_H
# include "config.h"
#endif

#include "plugins/plugin_api.h"

#include <stdio.h>
#include <stdlib.h>
#include <gmodule.h>

#ifdef HAVE_SYS_TYPES_H
# include <sys/types.h>
#endif

#ifdef HAVE_NETINET_IN_H
# include <netinet/in.h>
#endif

#include <string.h>
#include <glib.h>
#include <epan/packet.h>
#include <epan/proto.h>
#include "packet-giop.h"

#include "plugins/plugin_api_defs.h"

#ifndef __ETHEREAL_STATIC__
G_MODULE_EXPORT const gchar version[] = "{{.}}";
#endif
`)

var tmplPrototypesStart = tmpl("prototypes_start", `
/* {{.}} prototype declaration Start */
`)

var tmplPrototype = tmpl("prototype", `
/* {{.Label}} = {{.RepoID}} */

static void {{.Routine}}(`+routineParams+`);
`)

var tmplPrototypesEnd = tmpl("prototypes_end", `
/* {{.}} prototype declaration End */
`)

var tmplProtocol = tmpl("protocol", `
/* Initialise the protocol and subtree pointers */

static int proto_{{.}} = -1;

static gint ett_{{.}} = -1;

/* Initialise the initial Alignment */

static guint32  boundary = GIOP_HEADER_SIZE;  /* initial value */
`)

var tmplSectionStart = tmpl("section_start", `
/*
 * IDL {{.}} Start
 */
`)

var tmplSectionEnd = tmpl("section_end", `
/*
 * IDL {{.}} End
 */
`)

var tmplConstant = tmpl("constant", `static const char {{.Constant}}[] = "{{.Wire}}" ;`)

var tmplValueString = tmpl("value_string", `
/*
 * Enum = {{.RepoID}}
 */

static const value_string {{.Name}}[] = {
{{- range $i, $e := .Enumerators}}
   { {{$i}}, "{{$e}}" },
{{- end}}
   { 0,       NULL },
};
`)

var tmplHelpersStart = tmpl("helpers_start", `
/*  Begin {{.}} Helper Functions  */
`)

var tmplHelpersEnd = tmpl("helpers_end", `
/*  End {{.}} Helper Functions  */
`)

// Routines.

var tmplRoutineStart = tmpl("routine_start", `
/* {{.Label}} = {{.RepoID}} */

static void {{.Routine}}(`+routineParams+`) {

    gboolean stream_is_big_endian;          /* big endianess */
`)

var tmplVarsStart = tmpl("vars_start", `
/* Operation specific Variable declarations Begin */
`)

var tmplVarsEnd = tmpl("vars_end", `
/* Operation specific Variable declarations End */
`)

var tmplEndianess = tmpl("endianess", `
stream_is_big_endian = is_big_endian(header);  /* get stream endianess */
`)

var tmplRoutineEnd = tmpl("routine_end", `}`)

var tmplOperationSwitchStart = tmpl("operation_switch_start", `
stream_is_big_endian = is_big_endian(header);

switch(header->message_type) {
case Request:`)

var tmplOperationRequestEnd = tmpl("operation_request_end", `break;
case Reply:`)

var tmplRepStatusStart = tmpl("rep_status_start", `switch(header->rep_status) {
case NO_EXCEPTION:`)

var tmplNoExceptionEnd = tmpl("no_exception_end", `break;
case USER_EXCEPTION:`)

var tmplRaises = tmpl("raises", `/* Raises {{.}} (decoded by decode_user_exception) */`)

var tmplUserExceptionEnd = tmpl("user_exception_end", `break;
default:

    /* Unknown Exception */

    g_warning("Unknown Exception ");

    break;

}   /* switch(header->rep_status) */

break;`)

var tmplOperationSwitchEnd = tmpl("operation_switch_end", `default:

    /* Unknown GIOP Message */

    g_warning("Unknown GIOP Message");

    break;

} /* switch(header->message_type) */`)

var tmplOneway = tmpl("oneway", `/* Oneway operation, no reply expected */`)

// Type decoders.

var tmplScalar = tmpl("scalar", `{{if .Aligned -}}
{{.Var}} = get_CDR_{{.Fn}}(tvb,offset,stream_is_big_endian, boundary);
{{- else -}}
{{.Var}} = get_CDR_{{.Fn}}(tvb,offset);
{{- end}}
if (tree) {
   proto_tree_add_text(tree,tvb,*offset-{{.Size}},{{.Size}},"{{.Name}} = {{.Format}}",{{.Var}});
}`)

var tmplVoid = tmpl("void", `
/* Function returns void */
`)

var tmplLongDouble = tmpl("long_double", `while( ( (*offset + boundary) % 8) != 0) ++(*offset);   /* align */
if (tree) {
   proto_tree_add_text(tree,tvb,*offset,{{.Size}},"{{.Name}} = <long double>");
}
*offset += {{.Size}};`)

var tmplAny = tmpl("any", `get_CDR_any(tvb,tree,offset,stream_is_big_endian, boundary, header);
`)

var tmplTypeCode = tmpl("typecode", `u_octet4 = get_CDR_typeCode(tvb, tree, offset, stream_is_big_endian, boundary, header);
`)

var tmplObject = tmpl("object", `get_CDR_object(tvb, pinfo, tree, offset, stream_is_big_endian, boundary);
`)

var tmplString = tmpl("string", `u_octet4 = get_CDR_{{.Fn}}(tvb, &seq, offset, stream_is_big_endian, boundary{{if .Wide}}, header{{end}});
if (tree) {
   proto_tree_add_text(tree,tvb,*offset-4-u_octet4,4,"length = %u",u_octet4);
   if (u_octet4 > 0)
      proto_tree_add_text(tree,tvb,*offset-u_octet4,u_octet4,"{{.Name}} = %s",seq);

}

g_free(seq);          /*  free buffer  */
seq = NULL;`)

var tmplWChar = tmpl("wchar", `s_octet1 = get_CDR_wchar(tvb, &seq, offset, header);
if (tree) {
    if (s_octet1 > 0)
        proto_tree_add_text(tree,tvb,*offset-1-s_octet1,1,"length = %u",s_octet1);

    if (s_octet1 < 0)
        s_octet1 = -s_octet1;

    if (s_octet1 > 0)
        proto_tree_add_text(tree,tvb,*offset-s_octet1,s_octet1,"{{.Name}} = %s",seq);

}

g_free(seq);          /*  free buffer  */
seq = NULL;`)

var tmplFixed = tmpl("fixed", `get_CDR_fixed(tvb, &seq, offset, {{.Digits}}, {{.Scale}});
if (tree) {
   proto_tree_add_text(tree,tvb,*offset-{{.Length}}, {{.Length}}, "{{.Name}} < {{.Digits}}, {{.Scale}}> = %s",seq);
}

g_free(seq);          /*  free buffer  */
seq = NULL;
`)

var tmplEnum = tmpl("enum", `
u_octet4 = get_CDR_enum(tvb,offset,stream_is_big_endian, boundary);
if (tree) {
   proto_tree_add_text(tree,tvb,*offset-4,4,"{{.Name}} = %u (%s)",u_octet4,val_to_str(u_octet4,{{.Table}},"Unknown Enum Value"));
}`)

var tmplSequenceStart = tmpl("sequence_start", `u_octet4_loop_{{.Name}} = get_CDR_ulong(tvb, offset, stream_is_big_endian, boundary);
if (tree) {
   proto_tree_add_text(tree,tvb,*offset-4, 4 ,"Seq length of {{.Name}} = %u",u_octet4_loop_{{.Name}});
}
for (i_{{.Name}}=0; i_{{.Name}} < u_octet4_loop_{{.Name}}; i_{{.Name}}++) {`)

var tmplArrayStart = tmpl("array_start", `/* Array: {{.Name}}[ {{.Count}}]  */
for (i_{{.Name}}=0; i_{{.Name}} < {{.Count}}; i_{{.Name}}++) {`)

var tmplLoopEnd = tmpl("loop_end", `}`)

var tmplCall = tmpl("call", `/*  Begin {{.Label}} "{{.Name}}"  */

{{.Routine}}(`+routineArgs+`);

/*  End {{.Label}} "{{.Name}}"  */
`)

var tmplNoPayload = tmpl("no_payload", `/* Exception {{.}} carries no members */`)

var tmplWarning = tmpl("warning", `
/* WARNING - {{.}} */
`)

// Unions.

var tmplUnionStart = tmpl("union_start", `/*
 * IDL Union Start - {{.}}
 */
`)

var tmplUnionDiscriminant = tmpl("union_discriminant", `/*
 * IDL Union - Discriminant - {{.}}
 */
`)

var tmplSaveDiscriminant = tmpl("save_discriminant", `disc_s_{{.Name}} = ({{.CType}}) {{.Var}};     /* save {{.From}} discriminant and cast to {{.CType}} */
`)

var tmplLabelCompareStart = tmpl("label_compare_start", `if (disc_s_{{.Name}} == {{.Value}}) {
`)

var tmplLabelCompareEnd = tmpl("label_compare_end", `    return;     /* End Compare for this discriminant type */
}
`)

var tmplLabelDefaultStart = tmpl("label_default_start", `
/* Default Union Case Start */
`)

var tmplLabelDefaultEnd = tmpl("label_default_end", `/* Default Union Case End */
`)

var tmplUnionEnd = tmpl("union_end", `/*
 * IDL union End - {{.}}
 */
`)

// Delegators and main entry.

var tmplExceptionDelegatorStart = tmpl("exception_delegator_start", `
/*
 * Main delegator for exception handling
 *
 */

static gboolean decode_user_exception(`+routineParams+` ) {

    gboolean be;                        /* big endianess */

`)

var tmplExceptionEntry = tmpl("exception_entry", `if (!strcmp(header->exception_id, {{.Constant}} )) {
   {{.Routine}}(`+routineArgs+`);   /*  {{.Comment}}  */
   return TRUE;
}
`)

var tmplExceptionDelegatorEnd = tmpl("exception_delegator_end", `

    return FALSE;    /* user exception not found */

}
`)

var tmplOperationEntry = tmpl("operation_entry", `if (!strcmp(operation, {{.Constant}} )) {
   {{.Routine}}(`+routineArgs+`);
   return TRUE;
}`)

var tmplGetterEntry = tmpl("getter_entry", `if (!strcmp(operation, {{.Constant}} ) && (header->message_type == Reply) && (header->rep_status == NO_EXCEPTION) ) {
   {{.Routine}}(`+routineArgs+`);
   return TRUE;
}`)

var tmplSetterEntry = tmpl("setter_entry", `if (!strcmp(operation, {{.Constant}} ) && (header->message_type == Request) ) {
   {{.Routine}}(`+routineArgs+`);
   return TRUE;
}`)

var tmplMainStart = tmpl("main_start", `
static gboolean dissect_{{.Dissector}}(tvbuff_t *tvb, packet_info *pinfo, proto_tree *ptree, int *offset, MessageHeader *header, gchar *operation, gchar *idlname) {

    proto_item *ti = NULL;
    proto_tree *tree = NULL;            /* init later, inside if(tree) */

    gboolean be;                        /* big endianess */
    guint32  offset_saved = (*offset);  /* save in case we must back out */

    if (check_col(pinfo->cinfo, COL_PROTOCOL))
       col_set_str(pinfo->cinfo, COL_PROTOCOL, "{{.Protocol}}");

    if (ptree) {
       ti = proto_tree_add_item(ptree, proto_{{.Dissector}}, tvb, *offset, tvb_length(tvb) - *offset, FALSE);
       tree = proto_item_add_subtree(ti, ett_{{.Dissector}});
    }

    be = is_big_endian(header);         /* get endianess */

    /* If we have a USER Exception, then decode it and return */

    if ((header->message_type == Reply) && (header->rep_status == USER_EXCEPTION)) {

       return decode_user_exception(tvb, pinfo, tree, offset, header, operation);

    }

`)

var tmplMainSwitchStart = tmpl("main_switch_start", `switch(header->message_type) {

case Request:
case Reply:
`)

var tmplMainSwitchEnd = tmpl("main_switch_end", `
break;
case CancelRequest:
case LocateRequest:
case LocateReply:
case CloseConnection:
case MessageError:
case Fragment:
   return FALSE;      /* not handled yet */

default:
   return FALSE;      /* not handled yet */

}   /* switch */
`)

var tmplMainEnd = tmpl("main_end", `

    /*
     * We failed to match ANY operations, so perhaps this is not for us !
     */

    (*offset) = offset_saved;       /* be nice */

    return FALSE;

}  /* End of main dissector  */
`)

var tmplProtoRegister = tmpl("proto_register", `

/* Register the protocol with Ethereal */

void proto_register_giop_{{.Dissector}}(void) {

   /* setup protocol subtree array */

   static gint *ett[] = {
      &ett_{{.Dissector}},
   };

   /* Register the protocol name and description */

   proto_{{.Dissector}} = proto_register_protocol("{{.Description}}" , "{{.Protocol}}", "giop-{{.Dissector}}" );

   proto_register_subtree_array(ett,array_length(ett));
}
`)

var tmplHandoffStart = tmpl("handoff_start", `

/* register me as handler for these interfaces */

void proto_register_handoff_giop_{{.}}(void) {
`)

var tmplHandoffExplicit = tmpl("handoff_explicit", `
#if 0

/* Register for Explicit Dissection */

register_giop_user_module(dissect_{{.Dissector}}, "{{.Protocol}}", "{{.Interface}}", proto_{{.Dissector}} );     /* explicit dissector */

#endif
`)

var tmplHandoffHeuristic = tmpl("handoff_heuristic", `

/* Register for Heuristic Dissection */

register_giop_user(dissect_{{.Dissector}}, "{{.Protocol}}" ,proto_{{.Dissector}});     /* heuristic dissector */
`)

var tmplHandoffEnd = tmpl("handoff_end", `
}
`)

var tmplPlugin = tmpl("plugin", `

#ifndef __ETHEREAL_STATIC__

G_MODULE_EXPORT void
plugin_reg_handoff(void){
   proto_register_handoff_giop_{{.Dissector}}();
}

G_MODULE_EXPORT void
plugin_init(plugin_address_table_t *pat){
   /* initialise the table of pointers needed in Win32 DLLs */
   plugin_address_table_init(pat);
   if (proto_{{.Dissector}} == -1) {
     proto_register_giop_{{.Dissector}}();
   }
}

#endif
`)
